package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

func TestZapLogger_Fields(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerFrom(zap.New(obs))

	actor := profile.Profile{ID: "p-1", Role: profile.RoleCoordinator}
	logger.Error("reviewing answer", errors.New("boom"), map[string]interface{}{"submission_id": "s-1"}, actor, 42)
	logger.Debug("plain")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		first := entries[0]
		assert.Equal(t, zapcore.ErrorLevel, first.Level)
		assert.Equal(t, "reviewing answer", first.Message)

		fields := first.ContextMap()
		assert.Equal(t, "boom", fields["error"])
		assert.Equal(t, "s-1", fields["submission_id"])
		assert.Equal(t, "p-1", fields["profile_id"])
		assert.Equal(t, profile.RoleCoordinator, fields["role"])
		assert.EqualValues(t, 42, fields["arg0"])

		assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
		assert.Empty(t, entries[1].Context)
	}
}

func TestNewLogger(t *testing.T) {
	conf := &core.Config{Env: "TEST", TestMode: true, Build: "test"}

	l, err := NewLogger(conf, "api")
	if assert.NoError(t, err) {
		_, ok := l.(*ZapLogger)
		assert.True(t, ok, "no rollbar token: local logger only")
	}

	conf.RollbarToken = "token"
	l, err = NewLogger(conf, "api")
	if assert.NoError(t, err) {
		_, ok := l.(*RollbarLogger)
		assert.True(t, ok)
	}
}
