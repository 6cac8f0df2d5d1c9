package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/user"
)

func createTestLesson(t *testing.T, env *testEnv, viewer user.User, studentIDs ...int) lesson.Read {
	t.Helper()
	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	read, err := env.lessonSvc.Create(context.Background(), viewer, lesson.NewLesson{
		StartDT:    start,
		EndDT:      start.Add(time.Hour),
		Subject:    "Maths",
		Topic:      "Algebra",
		Status:     lesson.StatusPlanned,
		StudentIDs: studentIDs,
	})
	if err != nil {
		t.Fatalf("createTestLesson() failed: %v", err)
	}
	return read
}

func Test_lessonApi_crud(t *testing.T) {
	env := setup(t)

	tutorUsr := createUser(t, env.userRepo, "Tee", "Cha", "tutor@test.test", "LirLir123", user.RoleTutor, nil, true)
	tutorToken := getToken(t, env.conf, tutorUsr)
	otherUsr := createUser(t, env.userRepo, "Oth", "Er", "other@test.test", "LirLir123", user.RoleTutor, nil, true)

	mine := createTestLesson(t, env, tutorUsr)
	notMine := createTestLesson(t, env, otherUsr)

	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []httpTest{
		{
			name:     "auth required",
			method:   http.MethodGet,
			path:     "/api/lessons",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "query returns own lessons only",
			method:   http.MethodGet,
			path:     "/api/lessons",
			token:    tutorToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []lesson.Read{mine}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/lessons/%d", mine.ID),
			token:    tutorToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, mine),
		},
		{
			name:     "retrieve out of scope is not found",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/lessons/%d", notMine.ID),
			token:    tutorToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, detailErr{Detail: "Lesson not found"}),
		},
		{
			name:   "create rejects end before start",
			method: http.MethodPost,
			path:   "/api/lessons",
			body: marchallObj(t, lesson.NewLesson{
				StartDT: start, EndDT: start.Add(-time.Hour), Subject: "Maths", Topic: "Algebra",
			}),
			token:    tutorToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, detailErr{Detail: "End date must be after start date."}),
		},
		{
			name:   "create rejects missing student",
			method: http.MethodPost,
			path:   "/api/lessons",
			body: marchallObj(t, lesson.NewLesson{
				StartDT: start, EndDT: start.Add(time.Hour), Subject: "Maths", Topic: "Algebra", StudentIDs: []int{99},
			}),
			token:    tutorToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, detailErr{Detail: "Student not found"}),
		},
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/lessons",
			body: marchallObj(t, lesson.NewLesson{
				StartDT: start, EndDT: start.Add(time.Hour), Subject: "Maths", Topic: "Algebra",
			}),
			token:    tutorToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "update",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/lessons/%d", mine.ID),
			body:     []byte(`{"topic": "Geometry"}`),
			token:    tutorToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "update out of scope is not found",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/lessons/%d", notMine.ID),
			body:     []byte(`{"topic": "Geometry"}`),
			token:    tutorToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, detailErr{Detail: "Lesson not found"}),
		},
		{
			name:     "update rejects invalid status",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/lessons/%d", mine.ID),
			body:     []byte(`{"status": "nope"}`),
			token:    tutorToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, detailMap{"detail": map[string]string{"status": "invalid lesson status"}}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/lessons/%d", mine.ID),
			token:    tutorToken,
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.method == http.MethodPut && tt.wantCode == http.StatusOK {
				var res lesson.Read
				unmarchallBody(t, rec, &res)
				if res.Topic != "Geometry" {
					t.Errorf("Topic = %q, want Geometry", res.Topic)
				}
			}
		})
	}
}

func Test_lessonApi_companyLinked(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	co, err := env.companyRepo.CreateCompany(ctx, company.Company{Name: "Acme Tutoring", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateCompany() failed: %v", err)
	}
	adminUsr := createUser(t, env.userRepo, "Ad", "Min", "admin@test.test", "LirLir123", user.RoleAdmin, []int{co.ID}, true)
	adminToken := getToken(t, env.conf, adminUsr)

	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	read, err := env.lessonSvc.Create(ctx, adminUsr, lesson.NewLesson{
		CompanyID: &co.ID,
		StartDT:   start,
		EndDT:     start.Add(time.Hour),
		Subject:   "Maths",
		Topic:     "Algebra",
		Status:    lesson.StatusPlanned,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	tests := []httpTest{
		{
			name:     "update is rejected",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/lessons/%d", read.ID),
			body:     []byte(`{"topic": "Geometry"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, detailErr{Detail: lesson.ErrCompanyLinked.Error()}),
		},
		{
			name:     "delete is rejected",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/lessons/%d", read.ID),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, detailErr{Detail: lesson.ErrCompanyLinked.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_lessonApi_queryForStudent(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tutorUsr := createUser(t, env.userRepo, "Tee", "Cha", "tutor@test.test", "LirLir123", user.RoleTutor, nil, true)
	tutorToken := getToken(t, env.conf, tutorUsr)

	clt := createTestClient(t, env)
	std := createTestStudent(t, env, clt.ID, "Jane", "Doe", "jane@test.test")
	attended := createTestLesson(t, env, tutorUsr, std.ID)
	if _, err := env.lessonSvc.Create(ctx, tutorUsr, lesson.NewLesson{
		StartDT: attended.StartDT, EndDT: attended.EndDT, Subject: "Maths", Topic: "Algebra", Status: lesson.StatusPlanned,
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	tests := []httpTest{
		{
			name:     "missing student is not found",
			method:   http.MethodGet,
			path:     "/api/lessons/student/99",
			token:    tutorToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, detailErr{Detail: "Student not found"}),
		},
		{
			name:     "only the student's lessons",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/lessons/student/%d", std.ID),
			token:    tutorToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []lesson.Read{attended}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_lessonApi_createSpace(t *testing.T) {
	env := setup(t)

	tutorUsr := createUser(t, env.userRepo, "Tee", "Cha", "tutor@test.test", "LirLir123", user.RoleTutor, nil, true)
	tutorToken := getToken(t, env.conf, tutorUsr)

	clt := createTestClient(t, env)
	std := createTestStudent(t, env, clt.ID, "Jane", "Doe", "jane@test.test")
	empty := createTestLesson(t, env, tutorUsr)
	full := createTestLesson(t, env, tutorUsr, std.ID)

	t.Run("no students", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, detailErr{Detail: "No students found for this lesson"}),
		}
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/api/lessons/%d/eurus-space", empty.ID), tutorToken)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/api/lessons/%d/eurus-space", full.ID), tutorToken)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		if got := rec.Body.String(); got != string(env.spaceSvc.Response) {
			t.Errorf("body = %s, want %s", got, env.spaceSvc.Response)
		}
		if len(env.spaceSvc.Requests) != 1 {
			t.Errorf("recorded %d space requests, want 1", len(env.spaceSvc.Requests))
		}
	})

	t.Run("provider failure is a server error", func(t *testing.T) {
		upstreamErr := errors.New("Eurus returned 500: boom")
		env.spaceSvc.Err = upstreamErr
		defer func() { env.spaceSvc.Err = nil }()

		tt := httpTest{
			wantCode: http.StatusInternalServerError,
			wantData: marchallObj(t, detailErr{Detail: lesson.SpaceError{Err: upstreamErr}.Error()}),
		}
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/api/lessons/%d/eurus-space", full.ID), tutorToken)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
