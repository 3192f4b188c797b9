package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// capturingExporter keeps every exported record in memory
type capturingExporter struct {
	records []sdklog.Record
}

func (e *capturingExporter) Export(_ context.Context, records []sdklog.Record) error {
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *capturingExporter) Shutdown(context.Context) error { return nil }

func (e *capturingExporter) ForceFlush(context.Context) error { return nil }

func newCapturingLoggerProvider(t *testing.T) (*LoggerProvider, *capturingExporter) {
	t.Helper()
	previous := global.GetLoggerProvider()
	t.Cleanup(func() { global.SetLoggerProvider(previous) })

	exporter := &capturingExporter{}
	lp, err := NewLoggerProviderWithProcessor(LogsConfig{ServiceName: "signage-test"},
		sdklog.NewSimpleProcessor(exporter), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp, exporter
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(context.Background()))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewZapOTELCore(t *testing.T) {
	t.Run("disabled provider yields nop core", func(t *testing.T) {
		core := NewZapOTELCore("svc", &LoggerProvider{}, zapcore.InfoLevel)
		assert.False(t, core.Enabled(zapcore.ErrorLevel))

		assert.False(t, NewZapOTELCore("svc", nil, zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	})

	t.Run("filters below minimum level", func(t *testing.T) {
		lp, _ := newCapturingLoggerProvider(t)
		core := NewZapOTELCore("svc", lp, zapcore.WarnLevel)

		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestBridgeLogger(t *testing.T) {
	t.Run("disabled returns base", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, BridgeLogger(base, "svc", &LoggerProvider{}))
	})

	t.Run("tees entries to both cores", func(t *testing.T) {
		lp, exporter := newCapturingLoggerProvider(t)
		observed, logs := observer.New(zapcore.InfoLevel)

		logger := BridgeLogger(zap.New(observed), "svc", lp)
		logger.Debug("dropped by level")
		logger.Info("value resolved", zap.String("field", "price"))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "value resolved", logs.All()[0].Message)

		require.Len(t, exporter.records, 1)
		assert.Equal(t, "value resolved", exporter.records[0].Body().AsString())
	})
}

func TestLevelFilterCore_With(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	core := (&levelFilterCore{Core: observed, minLevel: zapcore.InfoLevel}).With([]zapcore.Field{zap.String("k", "v")})

	logger := zap.New(core)
	logger.Debug("hidden")
	logger.Info("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}
