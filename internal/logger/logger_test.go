package logger_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/neurobank/internal/logger"
)

func fixedTime() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func newTestLogger(buf *bytes.Buffer, level logger.Level) *logger.Logger {
	return logger.New(
		logger.WithOutput(buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithTimeSource(fixedTime),
	)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" error "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("verbose"))
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.WARN)

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN  ")
	assert.Contains(t, out, "shown 1")
	assert.True(t, strings.HasPrefix(out, "2024-01-02 03:04:05.000"))
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.DEBUG).
		WithPrefix("stats_service").
		WithFields(map[string]any{"user_id": "u1", "date": "2024-01-02"}).
		WithError(fmt.Errorf("boom"))

	log.Debug("recorded")

	line := buf.String()
	assert.Contains(t, line, "[stats_service]")
	assert.Contains(t, line, "recorded date=2024-01-02 error=boom user_id=u1\n")
}

func TestLogger_DerivedDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestLogger(&buf, logger.INFO)
	_ = parent.WithField("request_id", "abc")

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
	assert.Same(t, parent, parent.WithError(nil))
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.INFO)

	ctx := logger.NewContext(context.Background(), log)
	require.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
