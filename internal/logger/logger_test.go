package logger_test

import (
	"context"
	"testing"

	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARNING", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.input))
		})
	}
}

func TestInitLogger(t *testing.T) {
	logger.InitLogger("test")
	assert.NotNil(t, logger.Log)

	logger.InitLoggerWithConfig(logger.LoggerConfig{Level: "error", Stage: "prod", EnableJSON: true})
	assert.False(t, logger.Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	scoped := zap.New(core).With(zap.String("correlation_id", "abc"))

	ctx := logger.ToContext(context.Background(), scoped)
	logger.FromContext(ctx).Info("signed")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "abc", entries[0].ContextMap()["correlation_id"])
	}

	logger.InitLogger("test")
	assert.Same(t, logger.Log, logger.FromContext(context.Background()))
}

func TestSetHostIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))

	logger.SetHostIdentity(xid.HostIdentity{MachineID: [3]byte{0x60, 0xf4, 0x86}, Pid: 0xe428, Source: "override"})
	logger.SetHostIdentity(xid.HostIdentity{MachineID: [3]byte{0x60, 0xf4, 0x86}, Pid: 0xe428, Source: "override"})
	logger.Info("ready")

	// host fields survive a logger swap
	logger.SetLogger(zap.New(core))
	logger.Info("swapped")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		for _, e := range entries {
			assert.Len(t, e.Context, 3)
			fields := e.ContextMap()
			assert.Equal(t, "60f486", fields["machine_id"])
			assert.Equal(t, uint16(0xe428), fields["pid"])
			assert.Equal(t, "override", fields["host_source"])
		}
	}
}
