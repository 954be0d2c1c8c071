package main

import (
	"fmt"
	"log"
	"os"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/reminder"
	emailsvc "github.com/feeportal/backend/services/email"
	logsvc "github.com/feeportal/backend/services/logger"
	"github.com/feeportal/backend/storage/database"
	sqlxrepos "github.com/feeportal/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		conf:        conf,
		db:          db.DB,
		invoiceSvc:  invoice.NewService(sqlxrepos.NewInvoiceRepository(db)),
		reminderSvc: reminder.NewService(sqlxrepos.NewReminderRepository(db), nil, conf, logger),
		mailSvc:     mailSvc,
		out:         os.Stdout,
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
