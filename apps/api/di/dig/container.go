package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/MorenaCaparros/plataformaAPA-sub001/apps/api/echo"
	"github.com/MorenaCaparros/plataformaAPA-sub001/apps/shared"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
	emailsvc "github.com/MorenaCaparros/plataformaAPA-sub001/services/email"
	logsvc "github.com/MorenaCaparros/plataformaAPA-sub001/services/logger"
	rediscache "github.com/MorenaCaparros/plataformaAPA-sub001/storage/cache/redis"
	"github.com/MorenaCaparros/plataformaAPA-sub001/storage/database"
	sqlxrepos "github.com/MorenaCaparros/plataformaAPA-sub001/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	logger, err := logsvc.NewLogger(conf, "api")
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger, err := logsvc.NewLogger(conf, "db")
	if err != nil {
		log.Fatalf("setting up db logger: %v", err)
	}
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

// newTemplateCache connects to redis when enabled. The API runs uncached when redis is down.
func newTemplateCache(conf *core.Config, logger core.Logger) assessment.TemplateCache {
	if !conf.Redis.Enabled {
		return assessment.NoopTemplateCache{}
	}
	rdb, err := rediscache.NewClient(context.Background(), conf)
	if err != nil {
		logger.Error("redis unavailable, templates will not be cached", err)
		return assessment.NoopTemplateCache{}
	}
	return rediscache.NewTemplateCache(rdb, conf.Redis.CacheTTL, logger)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newAssessmentService(
	repo assessment.Repository,
	cache assessment.TemplateCache,
	profileSvc *profile.Service,
	trainingSvc *training.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *assessment.Service {
	return assessment.NewService(repo, cache, profileSvc, trainingSvc, mailSvc, logger, conf)
}

func newDeps(
	profileSvc *profile.Service,
	passwordReset *profile.PasswordReset,
	assessmentSvc *assessment.Service,
	trainingSvc *training.Service,
) *echoapi.Deps {
	return &echoapi.Deps{
		ProfileSvc:    profileSvc,
		PasswordReset: passwordReset,
		AssessmentSvc: assessmentSvc,
		TrainingSvc:   trainingSvc,
	}
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	shared.InitValidators(validate, translator)
	return validate
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newTemplateCache))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewProfileRepository, dig.As(new(profile.Repository))))
	must(c.Provide(sqlxrepos.NewTrainingRepository, dig.As(new(training.Repository))))
	must(c.Provide(sqlxrepos.NewAssessmentRepository, dig.As(new(assessment.Repository))))
	must(c.Provide(profile.NewService))
	must(c.Provide(profile.NewPasswordReset))
	must(c.Provide(training.NewService))
	must(c.Provide(newAssessmentService))
	must(c.Provide(shared.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
