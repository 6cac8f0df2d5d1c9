package lesson_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/space"
	"github.com/trezcool/darasa/storage/database/inmem"
)

type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type fixture struct {
	svc         *lesson.Service
	repo        lesson.Repository
	studentRepo student.Repository
	companyRepo company.Repository
	spaceSvc    *spacesvc.MockService
	mailSvc     *mailRecorder
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := inmemdb.NewDB()
	f := fixture{
		repo:        inmemdb.NewLessonRepository(db),
		studentRepo: inmemdb.NewStudentRepository(db),
		companyRepo: inmemdb.NewCompanyRepository(db),
		spaceSvc:    spacesvc.NewMockService(),
		mailSvc:     &mailRecorder{},
	}
	f.svc = lesson.NewService(f.repo, f.studentRepo, f.companyRepo, f.spaceSvc, f.mailSvc)
	return f
}

func createStudent(t *testing.T, repo student.Repository, first, last, email string, companyID *int) student.Student {
	t.Helper()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		ClientID:  1,
		FirstName: first,
		LastName:  last,
		Email:     email,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return std
}

func createCompany(t *testing.T, repo company.Repository, name, domain string) company.Company {
	t.Helper()
	co, err := repo.CreateCompany(context.Background(), company.Company{
		Name:      name,
		Domain:    domain,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createCompany(): %v", err)
	}
	return co
}

func tutor(id int) user.User {
	return user.User{ID: id, FirstName: "Tee", LastName: "Cha", Email: "tutor@test.test", Role: user.RoleTutor, IsActive: true}
}

func admin(id int, companyIDs ...int) user.User {
	return user.User{ID: id, FirstName: "Ad", LastName: "Min", Email: "admin@test.test", Role: user.RoleAdmin, CompanyIDs: companyIDs, IsActive: true}
}

func newLesson(start, end time.Time, studentIDs ...int) lesson.NewLesson {
	return lesson.NewLesson{
		StartDT:    start,
		EndDT:      end,
		Subject:    "Maths",
		Topic:      "Algebra",
		Status:     lesson.StatusPlanned,
		StudentIDs: studentIDs,
	}
}

func TestService_Create_dateBoundaries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		end     time.Time
		wantErr error
	}{
		{name: "end before start", end: start.Add(-time.Hour), wantErr: lesson.ErrEndBeforeStart},
		{name: "end equals start", end: start, wantErr: lesson.ErrEndBeforeStart},
		{name: "end one second after start", end: start.Add(time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tutor(1), newLesson(start, tt.end))
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Create_missingStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Now().UTC()

	_, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour), 99))
	if errors.Cause(err) != student.ErrNotFound {
		t.Errorf("Create() error = %v, wantErr %v", err, student.ErrNotFound)
	}
}

func TestService_Create_companyOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	co := createCompany(t, f.companyRepo, "Acme Tutoring", "https://acme.tutorcruncher.com")
	start := time.Now().UTC()

	nl := newLesson(start, start.Add(time.Hour))
	nl.CompanyID = &co.ID

	// admins may only create lessons for their own companies
	_, err := f.svc.Create(ctx, admin(1, co.ID+1), nl)
	if errors.Cause(err) != lesson.ErrCreateForbidden {
		t.Errorf("Create() error = %v, wantErr %v", err, lesson.ErrCreateForbidden)
	}
	if _, err = f.svc.Create(ctx, admin(1, co.ID), nl); err != nil {
		t.Errorf("Create() error = %v", err)
	}

	// tutors bypass the ownership check
	if _, err = f.svc.Create(ctx, tutor(2), nl); err != nil {
		t.Errorf("Create() error = %v", err)
	}

	// the company must exist
	badID := 99
	nl.CompanyID = &badID
	if _, err = f.svc.Create(ctx, admin(1, badID), nl); errors.Cause(err) != company.ErrNotFound {
		t.Errorf("Create() error = %v, wantErr %v", err, company.ErrNotFound)
	}
}

func TestService_Create_linksCreatorAsTutor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Now().UTC()
	creator := admin(7)

	read, err := f.svc.Create(ctx, creator, newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	// the creator gets a LessonTutor row, admin or not
	got, err := f.repo.QueryLessons(ctx, lesson.Filter{TutorID: &creator.ID})
	if err != nil {
		t.Fatalf("QueryLessons(): %v", err)
	}
	if len(got) != 1 || got[0].ID != read.ID {
		t.Errorf("QueryLessons() = %v, want lesson %d", got, read.ID)
	}
}

func TestService_Create_notifiesStudents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std := createStudent(t, f.studentRepo, "Jane", "Doe", "jane@test.test", nil)
	start := time.Now().UTC()

	if _, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour), std.ID)); err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if len(f.mailSvc.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(f.mailSvc.sent))
	}
	msg := f.mailSvc.sent[0]
	if len(msg.To) != 1 || msg.To[0].Address != std.Email {
		t.Errorf("To = %v, want %s", msg.To, std.Email)
	}
}

func TestService_viewerScoping(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	co := createCompany(t, f.companyRepo, "Acme Tutoring", "")
	start := time.Now().UTC()

	mine, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	other, err := f.svc.Create(ctx, tutor(2), newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	nl := newLesson(start, start.Add(time.Hour))
	nl.CompanyID = &co.ID
	corporate, err := f.svc.Create(ctx, admin(3, co.ID), nl)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	lessonIDs := func(reads []lesson.Read) map[int]bool {
		ids := make(map[int]bool, len(reads))
		for _, read := range reads {
			ids[read.ID] = true
		}
		return ids
	}

	// a tutor only sees their own lessons
	got, err := f.svc.QueryForViewer(ctx, tutor(1), nil)
	if err != nil {
		t.Fatalf("QueryForViewer(): %v", err)
	}
	if ids := lessonIDs(got); len(ids) != 1 || !ids[mine.ID] {
		t.Errorf("tutor sees %v, want only %d", ids, mine.ID)
	}

	// an admin with companies sees those companies' lessons
	got, err = f.svc.QueryForViewer(ctx, admin(4, co.ID), nil)
	if err != nil {
		t.Fatalf("QueryForViewer(): %v", err)
	}
	if ids := lessonIDs(got); len(ids) != 1 || !ids[corporate.ID] {
		t.Errorf("admin sees %v, want only %d", ids, corporate.ID)
	}

	// an admin with NO companies sees everything
	got, err = f.svc.QueryForViewer(ctx, admin(5), nil)
	if err != nil {
		t.Fatalf("QueryForViewer(): %v", err)
	}
	if ids := lessonIDs(got); len(ids) != 3 || !ids[mine.ID] || !ids[other.ID] || !ids[corporate.ID] {
		t.Errorf("unrestricted admin sees %v, want all three", ids)
	}

	// an unknown role fails fast
	invalid := user.User{ID: 6, Role: "superuser"}
	if _, err = f.svc.QueryForViewer(ctx, invalid, nil); errors.Cause(err) != user.ErrUnknownRole {
		t.Errorf("QueryForViewer() error = %v, wantErr %v", err, user.ErrUnknownRole)
	}
}

func TestService_GetForViewer_outOfScopeIsNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Now().UTC()

	read, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	if _, err = f.svc.GetForViewer(ctx, tutor(2), read.ID); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("GetForViewer() error = %v, wantErr %v", err, lesson.ErrNotFound)
	}
	if _, err = f.svc.GetForViewer(ctx, tutor(1), read.ID); err != nil {
		t.Errorf("GetForViewer() error = %v", err)
	}
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Now().UTC()

	read, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	topic := "Geometry"
	status := lesson.StatusComplete
	got, err := f.svc.Update(ctx, tutor(1), read.ID, lesson.UpdateLesson{Topic: &topic, Status: &status})
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if got.Topic != topic || got.Status != status {
		t.Errorf("Update() = topic %q status %q, want %q %q", got.Topic, got.Status, topic, status)
	}
	if got.UpdatedAt == nil {
		t.Error("Update() did not set UpdatedAt")
	}

	// date ordering is only enforced at creation
	before := start.Add(-2 * time.Hour)
	if _, err = f.svc.Update(ctx, tutor(1), read.ID, lesson.UpdateLesson{EndDT: &before}); err != nil {
		t.Errorf("Update() error = %v", err)
	}

	// a missing roster entry is reported by ID
	_, err = f.svc.Update(ctx, tutor(1), read.ID, lesson.UpdateLesson{StudentIDs: []int{42}})
	if wantErr := (lesson.MissingStudentError{ID: 42}); errors.Cause(err) != wantErr {
		t.Errorf("Update() error = %v, wantErr %v", err, wantErr)
	}

	// out-of-scope updates are not found
	_, err = f.svc.Update(ctx, tutor(2), read.ID, lesson.UpdateLesson{Topic: &topic})
	if errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("Update() error = %v, wantErr %v", err, lesson.ErrNotFound)
	}
}

func TestService_Update_rosterReplaced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std1 := createStudent(t, f.studentRepo, "Jane", "Doe", "jane@test.test", nil)
	std2 := createStudent(t, f.studentRepo, "John", "Smith", "john@test.test", nil)
	start := time.Now().UTC()

	read, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour), std1.ID))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	got, err := f.svc.Update(ctx, tutor(1), read.ID, lesson.UpdateLesson{StudentIDs: []int{std2.ID}})
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if len(got.Students) != 1 || got.Students[0].ID != std2.ID {
		t.Errorf("Update() students = %v, want only %d", got.Students, std2.ID)
	}
}

func TestService_companyLinkedIsReadOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	co := createCompany(t, f.companyRepo, "Acme Tutoring", "")
	start := time.Now().UTC()

	nl := newLesson(start, start.Add(time.Hour))
	nl.CompanyID = &co.ID
	read, err := f.svc.Create(ctx, admin(1, co.ID), nl)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	topic := "Geometry"
	_, err = f.svc.Update(ctx, admin(1, co.ID), read.ID, lesson.UpdateLesson{Topic: &topic})
	if errors.Cause(err) != lesson.ErrCompanyLinked {
		t.Errorf("Update() error = %v, wantErr %v", err, lesson.ErrCompanyLinked)
	}
	if err = f.svc.Delete(ctx, admin(1, co.ID), read.ID); errors.Cause(err) != lesson.ErrCompanyLinked {
		t.Errorf("Delete() error = %v, wantErr %v", err, lesson.ErrCompanyLinked)
	}
}

func TestService_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Now().UTC()

	read, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	if err = f.svc.Delete(ctx, tutor(2), read.ID); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("Delete() error = %v, wantErr %v", err, lesson.ErrNotFound)
	}
	if err = f.svc.Delete(ctx, tutor(1), read.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err = f.svc.GetForViewer(ctx, tutor(1), read.ID); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("GetForViewer() after delete error = %v, wantErr %v", err, lesson.ErrNotFound)
	}
}

func TestService_QueryForStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std := createStudent(t, f.studentRepo, "Jane", "Doe", "jane@test.test", nil)
	start := time.Now().UTC()

	if _, err := f.svc.QueryForStudent(ctx, tutor(1), 99); errors.Cause(err) != student.ErrNotFound {
		t.Errorf("QueryForStudent() error = %v, wantErr %v", err, student.ErrNotFound)
	}

	read, err := f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour), std.ID))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if _, err = f.svc.Create(ctx, tutor(1), newLesson(start, start.Add(time.Hour))); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	got, err := f.svc.QueryForStudent(ctx, tutor(1), std.ID)
	if err != nil {
		t.Fatalf("QueryForStudent(): %v", err)
	}
	if len(got) != 1 || got[0].ID != read.ID {
		t.Errorf("QueryForStudent() = %v, want only %d", got, read.ID)
	}
}

func TestService_CreateSpace(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std := createStudent(t, f.studentRepo, "Jane", "Doe", "jane@test.test", nil)
	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	viewer := tutor(1)

	empty, err := f.svc.Create(ctx, viewer, newLesson(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if _, err = f.svc.CreateSpace(ctx, viewer, empty.ID); errors.Cause(err) != lesson.ErrNoStudents {
		t.Errorf("CreateSpace() error = %v, wantErr %v", err, lesson.ErrNoStudents)
	}

	read, err := f.svc.Create(ctx, viewer, newLesson(start, start.Add(time.Hour), std.ID))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	// out of scope
	if _, err = f.svc.CreateSpace(ctx, tutor(2), read.ID); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("CreateSpace() error = %v, wantErr %v", err, lesson.ErrNotFound)
	}

	res, err := f.svc.CreateSpace(ctx, viewer, read.ID)
	if err != nil {
		t.Fatalf("CreateSpace(): %v", err)
	}
	if string(res) != string(f.spaceSvc.Response) {
		t.Errorf("CreateSpace() = %s, want %s", res, f.spaceSvc.Response)
	}

	if len(f.spaceSvc.Requests) != 1 {
		t.Fatalf("recorded %d space requests, want 1", len(f.spaceSvc.Requests))
	}
	sreq := f.spaceSvc.Requests[0]
	if len(sreq.Tutors) != 1 || !sreq.Tutors[0].IsLeader || sreq.Tutors[0].Email != viewer.Email {
		t.Errorf("Tutors = %v, want the viewer as leader", sreq.Tutors)
	}
	if len(sreq.Students) != 1 || sreq.Students[0].Email != std.Email {
		t.Errorf("Students = %v, want %s", sreq.Students, std.Email)
	}
	if want := start.Format(time.RFC3339); sreq.NotBefore != want {
		t.Errorf("NotBefore = %q, want %q", sreq.NotBefore, want)
	}

	// upstream failures are folded into a SpaceError
	f.spaceSvc.Err = errors.New("Eurus returned 500: boom")
	_, err = f.svc.CreateSpace(ctx, viewer, read.ID)
	if _, ok := errors.Cause(err).(lesson.SpaceError); !ok {
		t.Errorf("CreateSpace() error = %v, want a SpaceError", err)
	}
}
