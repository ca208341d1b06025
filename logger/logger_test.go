package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCrawlerAddsSource(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	defer func() { Default = nil }()

	ForCrawler("NoFluffJobs").Info().Msg("run started")

	out := buf.String()
	assert.Contains(t, out, "run started")
	assert.Contains(t, out, "NoFluffJobs")
	assert.Contains(t, out, "crawler")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	defer func() { Default = nil }()

	LogError("store", errors.New("disk full"), "insert failed for %s", "job-1")

	out := buf.String()
	assert.Contains(t, out, "insert failed for job-1")
	assert.Contains(t, out, "disk full")
}

func TestGetLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", getLogLevel().String())

	os.Setenv("LOG_LEVEL", "not-a-level")
	assert.Equal(t, "info", getLogLevel().String())

	os.Unsetenv("LOG_LEVEL")
	os.Setenv("JOBCRAWLER_ENVIRONMENT", "production")
	assert.Equal(t, "info", getLogLevel().String())

	os.Unsetenv("JOBCRAWLER_ENVIRONMENT")
	assert.Equal(t, "debug", getLogLevel().String())
}
