package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-finance/core"
	"github.com/trezcool/masomo-finance/core/finance"
	emailsvc "github.com/trezcool/masomo-finance/services/email"
	logsvc "github.com/trezcool/masomo-finance/services/logger"
	"github.com/trezcool/masomo-finance/storage/database"
	sqlxrepos "github.com/trezcool/masomo-finance/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Ping(db); err != nil {
		logger.Fatal(fmt.Sprintf("connecting to database: %v", err), err)
	}

	// set up services
	catalog, err := finance.CatalogFromConfig(conf.Finance.Plans)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading plan catalog: %v", err), err)
	}
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	svc := finance.NewService(sqlxrepos.NewFinanceRepository(sqlx.NewDb(db, conf.Database.Engine)), catalog, validate)

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		conf:    conf,
		db:      db,
		board:   finance.NewBoard(svc),
		mailSvc: mailSvc,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
