package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/services/space"
	"github.com/trezcool/darasa/storage/database/inmem"
)

var errMissingToken = detailErr{Detail: "missing or malformed jwt"}

type detailErr struct {
	Detail string `json:"detail"`
}

type detailMap map[string]interface{}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testEnv struct {
	conf   *core.Config
	server Server

	userRepo    user.Repository
	clientRepo  client.Repository
	companyRepo company.Repository
	studentRepo student.Repository
	lessonRepo  lesson.Repository

	userSvc    *user.Service
	clientSvc  *client.Service
	companySvc *company.Service
	studentSvc *student.Service
	lessonSvc  *lesson.Service
	spaceSvc   *spacesvc.MockService
}

func testConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Darasa",
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: 10 * time.Minute,
		},
	}
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ClearSentMessages()

	conf := testConfig()
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	env := &testEnv{
		conf:        conf,
		userRepo:    inmemdb.NewUserRepository(db),
		clientRepo:  inmemdb.NewClientRepository(db),
		companyRepo: inmemdb.NewCompanyRepository(db),
		studentRepo: inmemdb.NewStudentRepository(db),
		lessonRepo:  inmemdb.NewLessonRepository(db),
		spaceSvc:    spacesvc.NewMockService(),
	}
	mailSvc := emailsvc.NewConsoleService(conf)

	env.userSvc = user.NewService(env.userRepo)
	env.clientSvc = client.NewService(env.clientRepo)
	env.companySvc = company.NewService(env.companyRepo)
	env.studentSvc = student.NewService(env.studentRepo, env.clientRepo, env.companyRepo)
	env.lessonSvc = lesson.NewService(env.lessonRepo, env.studentRepo, env.companyRepo, env.spaceSvc, mailSvc)

	env.server = NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        env.userSvc,
		ClientSvc:      env.clientSvc,
		CompanySvc:     env.companySvc,
		StudentSvc:     env.studentSvc,
		LessonSvc:      env.lessonSvc,
	})
	return env
}

func createUser(t *testing.T, repo user.Repository, first, last, email, pwd string, role user.Role, companyIDs []int, isActive bool) user.User {
	t.Helper()
	usr := user.User{
		FirstName:  first,
		LastName:   last,
		Email:      email,
		Role:       role,
		CompanyIDs: companyIDs,
		IsActive:   isActive,
		CreatedAt:  time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarchallBody(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarchallBody() failed: %v", err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
