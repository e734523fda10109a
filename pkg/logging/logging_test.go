package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/txsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	assert.Contains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), "warning message")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithOperation(ctx, "pull")
	ctx = logging.WithResource(ctx, "proj.res")
	ctx = logging.WithLanguage(ctx, "pt_BR")

	logging.FromContext(ctx).Info().Msg("downloading")

	testLogger.AssertContains(t, `"operation":"pull"`)
	testLogger.AssertContains(t, `"resource":"proj.res"`)
	testLogger.AssertContains(t, `"language":"pt_BR"`)
	testLogger.AssertContains(t, "downloading")
}

func TestRequestID(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRequestID(ctx, "pass-1")

	assert.Equal(t, "pass-1", logging.RequestID(ctx))
	assert.Equal(t, "", logging.RequestID(context.Background()))

	logging.Ctx(ctx).Info().Msg("hello")
	testLogger.AssertContains(t, `"request_id":"pass-1"`)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Warn().Str("resource", "a.b").Msg("refusing to delete")

	captured.AssertContains(t, "refusing to delete")
	captured.AssertNotContains(t, "deleted")
	assert.Len(t, captured.Lines(), 1)
}
