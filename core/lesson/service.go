package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

var (
	ErrNotFound       = errors.New("Lesson not found")
	ErrEndBeforeStart = errors.New("End date must be after start date.")
	ErrCompanyLinked  = errors.New("Cannot update lesson that is linked to a company. Lessons linked to companies are read-only.")
	ErrNoStudents     = errors.New("No students found for this lesson")

	ErrCreateForbidden = errors.New("Not authorized to create lessons for this company")
	ErrUpdateForbidden = errors.New("Not authorized to update lessons for this company")
)

// MissingStudentError names the roster entry that failed to resolve.
type MissingStudentError struct {
	ID int
}

func (e MissingStudentError) Error() string {
	return fmt.Sprintf("Student with ID %d not found", e.ID)
}

// SpaceError folds a space-provider failure into a single message rather
// than leaking transport detail.
type SpaceError struct {
	Err error
}

func (e SpaceError) Error() string {
	return fmt.Sprintf("Failed to create Eurus space: %v", e.Err)
}

type (
	// Filter narrows lesson queries. Zero-value fields do not constrain.
	Filter struct {
		ID         *int
		StudentID  *int
		TutorID    *int
		CompanyIDs []int
	}

	Repository interface {
		// CreateLesson persists the lesson, one LessonStudent row per student
		// id and a single LessonTutor row for tutorID, in one transaction.
		CreateLesson(ctx context.Context, lsn Lesson, studentIDs []int, tutorID int) (Lesson, error)
		QueryLessons(ctx context.Context, filter Filter) ([]Lesson, error)
		GetLesson(ctx context.Context, filter Filter) (Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// ReplaceLessonStudents deletes the lesson's LessonStudent rows and
		// inserts fresh ones for studentIDs.
		ReplaceLessonStudents(ctx context.Context, lessonID int, studentIDs []int) error
		// DeleteLesson removes the lesson's LessonStudent and LessonTutor rows
		// before the lesson itself.
		DeleteLesson(ctx context.Context, id int) error
		GetLessonStudents(ctx context.Context, lessonID int) ([]student.Student, error)
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
		companyRepo company.Repository
		spaceSvc    core.SpaceService
		mailSvc     core.EmailService
	}
)

func NewService(
	repo Repository,
	studentRepo student.Repository,
	companyRepo company.Repository,
	spaceSvc core.SpaceService,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		repo:        repo,
		studentRepo: studentRepo,
		companyRepo: companyRepo,
		spaceSvc:    spaceSvc,
		mailSvc:     mailSvc,
	}
}

// scopeFilter computes the lesson visibility constraints for the viewer:
// tutors see lessons linked to them via LessonTutor; admins see lessons of
// their companies, and ALL lessons when their company list is empty. The
// admin rule is deliberately asymmetric with students.
func (svc *Service) scopeFilter(viewer user.User) (Filter, error) {
	switch viewer.Role {
	case user.RoleTutor:
		id := viewer.ID
		return Filter{TutorID: &id}, nil
	case user.RoleAdmin:
		if len(viewer.CompanyIDs) == 0 {
			return Filter{}, nil
		}
		return Filter{CompanyIDs: viewer.CompanyIDs}, nil
	default:
		return Filter{}, errors.Wrapf(user.ErrUnknownRole, "scoping lessons for user %d", viewer.ID)
	}
}

func (svc *Service) QueryForViewer(ctx context.Context, viewer user.User, qf *QueryFilter) ([]Read, error) {
	filter, err := svc.scopeFilter(viewer)
	if err != nil {
		return nil, err
	}
	if qf != nil {
		filter.StudentID = qf.StudentID
	}
	lessons, err := svc.repo.QueryLessons(ctx, filter)
	if err != nil {
		return nil, err
	}
	return svc.buildReads(ctx, lessons)
}

// QueryForStudent lists a student's lessons, still scoped to the viewer.
// The student must exist regardless of scope.
func (svc *Service) QueryForStudent(ctx context.Context, viewer user.User, studentID int) ([]Read, error) {
	if _, err := svc.studentRepo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.QueryForViewer(ctx, viewer, &QueryFilter{StudentID: &studentID})
}

func (svc *Service) GetForViewer(ctx context.Context, viewer user.User, id int) (Read, error) {
	lsn, err := svc.getScoped(ctx, viewer, id)
	if err != nil {
		return Read{}, err
	}
	return svc.buildRead(ctx, lsn)
}

func (svc *Service) getScoped(ctx context.Context, viewer user.User, id int) (Lesson, error) {
	filter, err := svc.scopeFilter(viewer)
	if err != nil {
		return Lesson{}, err
	}
	filter.ID = &id
	return svc.repo.GetLesson(ctx, filter)
}

func (svc *Service) Create(ctx context.Context, viewer user.User, nl NewLesson) (Read, error) {
	for _, id := range nl.StudentIDs {
		if _, err := svc.studentRepo.GetStudentByID(ctx, id); err != nil {
			return Read{}, err
		}
	}
	if nl.CompanyID != nil {
		if err := svc.checkCompany(ctx, viewer, *nl.CompanyID, ErrCreateForbidden); err != nil {
			return Read{}, err
		}
	}
	if !nl.EndDT.After(nl.StartDT) {
		return Read{}, ErrEndBeforeStart
	}

	lsn := Lesson{
		CompanyID:                 nl.CompanyID,
		TCPath:                    nl.TCPath,
		StartDT:                   nl.StartDT,
		EndDT:                     nl.EndDT,
		Subject:                   nl.Subject,
		Topic:                     nl.Topic,
		Notes:                     nl.Notes,
		Status:                    nl.Status,
		CreatedAt:                 time.Now().UTC(),
		SkillsPracticed:           nl.SkillsPracticed,
		MainSubjectsCovered:       nl.MainSubjectsCovered,
		StudentStrengthsObserved:  nl.StudentStrengthsObserved,
		StudentWeaknessesObserved: nl.StudentWeaknessesObserved,
		TutorTips:                 nl.TutorTips,
	}
	// the creator is linked as the lesson's tutor, admin or not
	lsn, err := svc.repo.CreateLesson(ctx, lsn, nl.StudentIDs, viewer.ID)
	if err != nil {
		return Read{}, err
	}

	read, err := svc.buildRead(ctx, lsn)
	if err != nil {
		return Read{}, err
	}
	svc.notifyStudents(read)
	return read, nil
}

func (svc *Service) Update(ctx context.Context, viewer user.User, id int, ul UpdateLesson) (Read, error) {
	lsn, err := svc.getScoped(ctx, viewer, id)
	if err != nil {
		return Read{}, err
	}
	if lsn.IsCompanyLinked() {
		return Read{}, ErrCompanyLinked
	}
	if ul.CompanyID != nil {
		if err := svc.checkCompany(ctx, viewer, *ul.CompanyID, ErrUpdateForbidden); err != nil {
			return Read{}, err
		}
		lsn.CompanyID = ul.CompanyID
	}

	if ul.StudentIDs != nil {
		for _, sid := range ul.StudentIDs {
			if _, err := svc.studentRepo.GetStudentByID(ctx, sid); err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return Read{}, MissingStudentError{ID: sid}
				}
				return Read{}, err
			}
		}
		if err := svc.repo.ReplaceLessonStudents(ctx, lsn.ID, ul.StudentIDs); err != nil {
			return Read{}, err
		}
	}

	if ul.TCPath != nil {
		lsn.TCPath = *ul.TCPath
	}
	if ul.StartDT != nil {
		lsn.StartDT = *ul.StartDT
	}
	if ul.EndDT != nil {
		lsn.EndDT = *ul.EndDT
	}
	if ul.Subject != nil {
		lsn.Subject = *ul.Subject
	}
	if ul.Topic != nil {
		lsn.Topic = *ul.Topic
	}
	if ul.Notes != nil {
		lsn.Notes = *ul.Notes
	}
	if ul.Status != nil {
		lsn.Status = *ul.Status
	}
	now := time.Now().UTC()
	lsn.UpdatedAt = &now

	lsn, err = svc.repo.UpdateLesson(ctx, lsn)
	if err != nil {
		return Read{}, err
	}
	return svc.buildRead(ctx, lsn)
}

func (svc *Service) Delete(ctx context.Context, viewer user.User, id int) error {
	lsn, err := svc.getScoped(ctx, viewer, id)
	if err != nil {
		return err
	}
	if lsn.IsCompanyLinked() {
		return ErrCompanyLinked
	}
	return svc.repo.DeleteLesson(ctx, lsn.ID)
}

// CreateSpace opens a virtual classroom for the lesson with the viewer as
// leading tutor and all associated students as participants. The provider
// response is relayed verbatim.
func (svc *Service) CreateSpace(ctx context.Context, viewer user.User, id int) (json.RawMessage, error) {
	lsn, err := svc.getScoped(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	students, err := svc.repo.GetLessonStudents(ctx, lsn.ID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrNoStudents
	}

	req := core.SpaceRequest{
		LessonID: strconv.Itoa(lsn.ID),
		Tutors: []core.SpaceParticipant{{
			UserID:   strconv.Itoa(viewer.ID),
			Name:     viewer.FullName(),
			Email:    viewer.Email,
			IsLeader: true,
		}},
		NotBefore: lsn.StartDT.UTC().Format(time.RFC3339),
	}
	for _, std := range students {
		req.Students = append(req.Students, core.SpaceParticipant{
			UserID: strconv.Itoa(std.ID),
			Name:   std.FullName(),
			Email:  std.Email,
		})
	}

	res, err := svc.spaceSvc.CreateSpace(ctx, req)
	if err != nil {
		return nil, SpaceError{Err: err}
	}
	return res, nil
}

func (svc *Service) checkCompany(ctx context.Context, viewer user.User, companyID int, forbidden error) error {
	if _, err := svc.companyRepo.GetCompanyByID(ctx, companyID); err != nil {
		return err
	}
	// tutors bypass the company-ownership check entirely
	if !viewer.IsTutor() && !viewer.CompanyIDs.Contains(companyID) {
		return forbidden
	}
	return nil
}

// notifyStudents sends a short confirmation mail to the lesson's students,
// best-effort.
func (svc *Service) notifyStudents(read Read) {
	if svc.mailSvc == nil || len(read.Students) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(read.Students))
	for _, std := range read.Students {
		to = append(to, mail.Address{Name: std.FullName(), Address: std.Email})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Lesson scheduled: %s", read.Subject),
		Body: fmt.Sprintf(
			"A %s lesson on %q has been scheduled from %s to %s.",
			read.Subject, read.Topic,
			read.StartDT.UTC().Format(time.RFC1123), read.EndDT.UTC().Format(time.RFC1123),
		),
	})
}

func (svc *Service) buildRead(ctx context.Context, lsn Lesson) (Read, error) {
	students, err := svc.repo.GetLessonStudents(ctx, lsn.ID)
	if err != nil {
		return Read{}, errors.Wrap(err, "finding lesson students")
	}
	read := Read{Lesson: lsn, Students: students}

	if lsn.CompanyID != nil {
		co, err := svc.companyRepo.GetCompanyByID(ctx, *lsn.CompanyID)
		if err == nil {
			read.TutorCruncherURL = co.DeepLink(lsn.TCPath)
		} else if errors.Cause(err) != company.ErrNotFound {
			return Read{}, errors.Wrap(err, "finding lesson company")
		}
	}
	return read, nil
}

func (svc *Service) buildReads(ctx context.Context, lessons []Lesson) ([]Read, error) {
	reads := make([]Read, 0, len(lessons))
	for _, lsn := range lessons {
		read, err := svc.buildRead(ctx, lsn)
		if err != nil {
			return nil, err
		}
		reads = append(reads, read)
	}
	return reads, nil
}
