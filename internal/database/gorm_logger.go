package database

import (
	"fmt"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/foodgram/backend/internal/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormWriter forwards gorm's formatted log lines to zap.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(fmt.Sprintf(format, args...))
}

// NewGormLogger reports slow queries and errors through log. Record-not-found is an expected
// outcome of lookups and is not logged.
func NewGormLogger(log *logger.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{log: log.With("component", "gorm")}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
