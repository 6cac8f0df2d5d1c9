package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/services/space"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatalf("loading config: %+v", err)
	}

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	// set up validation
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up repositories
	userRepo := sqlxrepos.NewUserRepository(db)
	clientRepo := sqlxrepos.NewClientRepository(db)
	companyRepo := sqlxrepos.NewCompanyRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	lessonRepo := sqlxrepos.NewLessonRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	spaceSvc := spacesvc.NewEurusService(conf)

	userSvc := user.NewService(userRepo)
	clientSvc := client.NewService(clientRepo)
	companySvc := company.NewService(companyRepo)
	studentSvc := student.NewService(studentRepo, clientRepo, companyRepo)
	lessonSvc := lesson.NewService(lessonRepo, studentRepo, companyRepo, spaceSvc, mailSvc)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Addr:       fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port),
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    userSvc,
		ClientSvc:  clientSvc,
		CompanySvc: companySvc,
		StudentSvc: studentSvc,
		LessonSvc:  lessonSvc,
	})
	app.Start()
}
