package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func statement() (string, int64) {
	return "SELECT * FROM evas", 29
}

func TestLoggerAdaptorTrace(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	adaptor := NewLoggerAdaptor(logger, LoggerAdaptorConfig{
		SlowThreshold:             time.Minute,
		IgnoreRecordNotFoundError: true,
	})
	ctx := context.Background()

	adaptor.Trace(ctx, time.Now(), statement, nil)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	assert.Equal(t, "SELECT * FROM evas", hook.LastEntry().Data["sql"])
	assert.Equal(t, "store", hook.LastEntry().Data["component"])

	adaptor.Trace(ctx, time.Now().Add(-time.Hour), statement, nil)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	adaptor.Trace(ctx, time.Now(), statement, errors.New("boom"))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	hook.Reset()
	logger.SetLevel(logrus.InfoLevel)
	adaptor.Trace(ctx, time.Now(), statement, gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries())
}

func TestGetDialector(t *testing.T) {
	t.Parallel()

	samples := map[string]string{
		"sqlite:///:memory:":                "sqlite",
		"sqlite:///tmp/evas.db":             "sqlite",
		"postgresql://u:p@localhost/evas":   "postgres",
		"mysql://u:p@localhost:3306/evas":   "mysql",
		"mssql://u:p@localhost?database=ev": "sqlserver",
	}

	for storeURL, name := range samples {
		dialector, err := getDialector(storeURL)
		require.NoError(t, err, storeURL)
		assert.Equal(t, name, dialector.Name(), storeURL)
	}

	_, err := getDialector("redis://localhost")
	require.Error(t, err)
}

func TestDSNs(t *testing.T) {
	t.Parallel()

	for storeURL, dsn := range map[string]string{
		"sqlite:///:memory:":        ":memory:",
		"sqlite:///var/lib/evas.db": "file:/var/lib/evas.db",
		"sqlite://evas.db?mode=ro":  "file:evas.db?mode=ro",
		"mysql://u:p@db:3306/evas":  "u:p@tcp(db:3306)/evas?parseTime=true",
	} {
		parsed, err := parseStoreURL(storeURL)
		require.NoError(t, err)

		if scheme(parsed) == "mysql" {
			assert.Equal(t, dsn, mysqlDSN(parsed))
		} else {
			assert.Equal(t, dsn, sqliteDSN(parsed))
		}
	}
}
