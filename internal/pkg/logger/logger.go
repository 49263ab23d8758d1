package logger

import (
	"context"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerKey is the key for the logger in the context.
type loggerKey struct{}

// Init initializes a new logger writing JSON to stdout and bridging records to
// the OTLP log provider, and sets it in the context.
func Init(ctx context.Context, serviceInfo string, lp *sdklog.LoggerProvider) (context.Context, *zap.Logger) {
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
	}
	if lp != nil {
		cores = append(cores, otelzap.NewCore(serviceInfo, otelzap.WithLoggerProvider(lp)))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	return WithContext(ctx, logger), logger
}

// WithContext returns a context carrying the given logger.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the logger from the context.
func FromContext(ctx context.Context) *zap.Logger {
	value := ctx.Value(loggerKey{})
	if value == nil {
		return zap.NewNop()
	}

	logger, ok := value.(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}

	return logger
}
