package main

import (
	"log"
	"os"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/core/roster"
	"github.com/trezcool/boletin/core/school"
	emailsvc "github.com/trezcool/boletin/services/email"
	logsvc "github.com/trezcool/boletin/services/logger"
	"github.com/trezcool/boletin/storage/database"
	sqlxrepos "github.com/trezcool/boletin/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	schoolSvc, err := school.NewService(sqlxrepos.NewSchoolRepository(db), conf)
	if err != nil {
		logger.Fatal("loading school calendar", err)
	}
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		db:         db.DB,
		conf:       conf,
		contentSvc: content.NewService(sqlxrepos.NewContentRepository(db), schoolSvc),
		rosterSvc:  roster.NewService(sqlxrepos.NewRosterRepository(db), schoolSvc),
		mailSvc:    mailSvc,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	mailSvc.Wait()
	defer logger.Wait()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
