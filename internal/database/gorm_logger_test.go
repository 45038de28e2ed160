package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logger"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	log, logs := observedLogger()
	gl := NewGormLogger(log)

	sql := func() (string, int64) { return "SELECT * FROM users WHERE email = 'x'", 0 }
	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	gl.Trace(context.Background(), time.Now(), sql, errors.New("no such table: users"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "no such table: users")
	assert.Equal(t, "gorm", entry.ContextMap()["component"])
}

func TestGormLoggerReportsSlowQueries(t *testing.T) {
	log, logs := observedLogger()
	gl := NewGormLogger(log)

	begin := time.Now().Add(-2 * slowQueryThreshold)
	gl.Trace(context.Background(), begin, func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "SLOW SQL")

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 1, logs.Len(), "fast queries stay quiet at warn level")
}
