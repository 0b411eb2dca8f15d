package logsvc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

// ZapLogger writes structured logs through a zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a development logger in debug mode and a JSON production logger otherwise.
func NewZapLogger(conf *core.Config, name string) (*ZapLogger, error) {
	var cfg zap.Config
	if conf.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if conf.TestMode {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	zl = zl.Named(name).With(zap.String("env", conf.Env), zap.String("build", conf.Build))
	return &ZapLogger{sugar: zl.Sugar()}, nil
}

func NewZapLoggerFrom(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: zl.Sugar()}
}

func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
}

// keysAndValues flattens the loosely typed args into zap pairs.
// expected fmt: error, map[string]interface{}, profile.Profile
func keysAndValues(args []interface{}) []interface{} {
	kv := make([]interface{}, 0, len(args)*2)
	extra := 0
	for _, arg := range args {
		switch a := arg.(type) {
		case nil:
		case error:
			kv = append(kv, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				kv = append(kv, k, v)
			}
		case profile.Profile:
			kv = append(kv, zap.String("profile_id", a.ID), zap.String("role", a.Role))
		case *profile.Profile:
			if a != nil {
				kv = append(kv, zap.String("profile_id", a.ID), zap.String("role", a.Role))
			}
		default:
			kv = append(kv, fmt.Sprintf("arg%d", extra), a)
			extra++
		}
	}
	return kv
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, keysAndValues(args)...) }
func (l *ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, keysAndValues(args)...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, keysAndValues(args)...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, keysAndValues(args)...) }
func (l *ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, keysAndValues(args)...) }
