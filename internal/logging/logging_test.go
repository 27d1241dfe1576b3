package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return &Logger{Logger: log.New(buf, "", 0)}
}

func TestInfoPrefixesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.Info("building %d colors", 42)
	require.Contains(t, buf.String(), "INFO")
	require.Contains(t, buf.String(), "building 42 colors")
}

func TestWarnPrefixesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.Warn("low disk space")
	require.Contains(t, buf.String(), "WARN")
	require.Contains(t, buf.String(), "low disk space")
}

func TestPhaseReportsStartAndDone(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	stop := l.Phase("build")
	stop()

	out := buf.String()
	require.True(t, strings.Contains(out, "build: starting"))
	require.True(t, strings.Contains(out, "build: done in"))
}

func TestBytesAndCommaFormatting(t *testing.T) {
	require.Equal(t, "1,234", Comma(1234))
	require.NotEmpty(t, Bytes(1024))
}
