package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogrus(t *testing.T) (*LogrusLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return NewLogrusLogger(l), &buf
}

func TestLogrusLogger_Levels(t *testing.T) {
	log, buf := newTestLogrus(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, s := range []string{
		"level=debug", "msg=dbg", "a=1",
		"level=info", "msg=inf", "b=2",
		"level=warning", "msg=wrn", "c=3",
		"level=error", "msg=err", "d=4",
	} {
		assert.Contains(t, out, s)
	}
}

func TestLogrusLogger_With_AddsFields(t *testing.T) {
	log, buf := newTestLogrus(t)

	log.With("request_id", "abc").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "k=v")
}

func TestFields_OddArgs(t *testing.T) {
	f := fields([]any{"a", 1, "dangling"})
	assert.Equal(t, 1, f["a"])
	assert.Equal(t, "dangling", f["!BADKEY"])
}

func TestNew_SelectsImplementation(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(&buf, "info", FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)
	l.Info(context.Background(), "json-line", "x", 1)
	assert.Contains(t, buf.String(), `"msg":"json-line"`)

	l, err = New(&buf, "debug", FormatText)
	require.NoError(t, err)
	assert.IsType(t, &LogrusLogger{}, l)

	_, err = New(&buf, "loud", FormatText)
	require.Error(t, err)

	_, err = New(&buf, "info", "xml")
	require.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.With("a", 1).Error(context.Background(), "ignored")
}
