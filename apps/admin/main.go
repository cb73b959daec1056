package main

import (
	"log"
	"os"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/course"
	"github.com/aulaproject/aula/core/user"
	emailsvc "github.com/aulaproject/aula/services/email"
	logsvc "github.com/aulaproject/aula/services/logger"
	"github.com/aulaproject/aula/storage/database"
	"github.com/aulaproject/aula/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.Conf

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(appLogger)
	}
	usrSvc := user.NewService(postgres.NewUserRepository(db))
	courseSvc := course.NewService(db, postgres.NewCourseRepository(db), usrSvc, mailSvc, appLogger)

	// start CLI
	cli := commandLine{
		db:        db,
		courseSvc: courseSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
