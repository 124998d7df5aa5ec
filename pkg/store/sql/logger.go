//nolint:goprintffuncname
package sql

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LoggerAdaptorConfig struct {
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

// loggerAdaptor routes gorm's logging through logrus.
type loggerAdaptor struct {
	logger *logrus.Logger
	config LoggerAdaptorConfig
}

//nolint:ireturn
func NewLoggerAdaptor(l *logrus.Logger, cfg LoggerAdaptorConfig) logger.Interface {
	return &loggerAdaptor{logger: l, config: cfg}
}

// LogMode is a no-op; the logrus level decides what is written.
//
//nolint:ireturn
func (l *loggerAdaptor) LogMode(_ logger.LogLevel) logger.Interface {
	return l
}

const (
	maximumCallerDepth = 15
	minimumCallerDepth = 4
)

// entry tags the log line with the first caller outside gorm.
func (l *loggerAdaptor) entry(ctx context.Context) *logrus.Entry {
	entry := l.logger.WithContext(ctx).WithField("component", "store")

	pcs := make([]uintptr, maximumCallerDepth)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(minimumCallerDepth, pcs)])

	for frame, more := frames.Next(); more; frame, more = frames.Next() {
		if strings.HasPrefix(frame.Function, "gorm.io/") {
			continue
		}

		return entry.WithField("caller", fmt.Sprintf("%s:%d", frame.File, frame.Line))
	}

	return entry
}

func (l *loggerAdaptor) Info(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Infof(format, args...)
}

func (l *loggerAdaptor) Warn(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Warnf(format, args...)
}

func (l *loggerAdaptor) Error(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Errorf(format, args...)
}

func (l *loggerAdaptor) statement(
	ctx context.Context,
	elapsed time.Duration,
	fc func() (sql string, rowsAffected int64),
) *logrus.Entry {
	sql, rows := fc()

	fields := logrus.Fields{
		"elapsed": elapsed.Round(time.Microsecond).String(),
		"sql":     sql,
		"rows":    rows,
	}
	if rows == -1 {
		fields["rows"] = "-"
	}

	return l.entry(ctx).WithFields(fields)
}

// Trace implements logger.Interface, mirroring gorm's default logger: errors,
// then slow statements, then everything at debug level.
func (l *loggerAdaptor) Trace(
	ctx context.Context,
	begin time.Time,
	fc func() (sql string, rowsAffected int64),
	err error,
) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.logger.IsLevelEnabled(logrus.ErrorLevel) &&
		(!errors.Is(err, gorm.ErrRecordNotFound) || !l.config.IgnoreRecordNotFoundError):
		l.statement(ctx, elapsed, fc).WithError(err).Error("SQL error")
	case l.config.SlowThreshold != 0 && elapsed > l.config.SlowThreshold &&
		l.logger.IsLevelEnabled(logrus.WarnLevel):
		l.statement(ctx, elapsed, fc).Warnf("SLOW SQL >= %v", l.config.SlowThreshold)
	case l.logger.IsLevelEnabled(logrus.DebugLevel):
		l.statement(ctx, elapsed, fc).Debug("SQL trace")
	}
}
