package main

import (
	"context"
	"log"
	"os"

	"github.com/MorenaCaparros/plataformaAPA-sub001/apps/shared"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
	emailsvc "github.com/MorenaCaparros/plataformaAPA-sub001/services/email"
	logsvc "github.com/MorenaCaparros/plataformaAPA-sub001/services/logger"
	"github.com/MorenaCaparros/plataformaAPA-sub001/storage/database"
	sqlxrepos "github.com/MorenaCaparros/plataformaAPA-sub001/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger, err := logsvc.NewLogger(conf, "admin")
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}

	// set up DB
	ctx := context.Background()
	errAndDie(logger, database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer func() { _ = db.Close() }()
	errAndDie(logger, database.Ping(ctx, db))

	// set up services
	validate, _ := shared.NewValidator()
	profileSvc := profile.NewService(sqlxrepos.NewProfileRepository(db))
	trainingSvc := training.NewService(sqlxrepos.NewTrainingRepository(db))
	assessmentSvc := assessment.NewService(
		sqlxrepos.NewAssessmentRepository(db),
		nil, /* cache */
		profileSvc,
		trainingSvc,
		emailsvc.NewConsoleService(conf, logger),
		logger,
		conf,
	)

	// start CLI
	cli := commandLine{
		db:            db,
		profileSvc:    profileSvc,
		assessmentSvc: assessmentSvc,
		validate:      validate,
		logger:        logger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
