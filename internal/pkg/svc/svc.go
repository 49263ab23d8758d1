package svc

import (
	"context"
	"fmt"
	"os"
	"time"

	loggerpkg "github.com/hitesh22rana/historian/internal/pkg/logger"
	otelpkg "github.com/hitesh22rana/historian/internal/pkg/otel"
)

const shutdownTimeout = 5 * time.Second

// Svc contains the service information.
type Svc struct {
	// Version is the service version.
	Version string

	// Name is the name of the service.
	Name string
}

// Svc represents the service.
var svc Svc

// GetVersion returns the service version.
func (s Svc) GetVersion() string {
	return s.Version
}

// GetName returns the service name.
func (s Svc) GetName() string {
	return s.Name
}

// SetVersion sets the service version.
func SetVersion(version string) {
	if svc.Version != "" {
		return
	}
	svc.Version = version
}

// SetName sets the service name.
func SetName(name string) {
	if svc.Name != "" {
		return
	}
	svc.Name = name
}

// Info returns the service information.
func Info() Svc {
	return svc
}

// Init wires the observability stack for a binary: OTLP resource, tracer,
// meter and log providers plus the context-carried logger. The returned cancel
// function tears everything down. Exporter failures are non-fatal; the binary
// then runs with local logging only.
func Init() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	serviceInfo := fmt.Sprintf("%s:%s", svc.GetName(), svc.GetVersion())

	res, err := otelpkg.InitResource(ctx, svc.GetName(), svc.GetVersion())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx, _ = loggerpkg.Init(ctx, serviceInfo, nil)
		return ctx, cancel
	}

	tp, err := otelpkg.InitTracerProvider(ctx, res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	mp, err := otelpkg.InitMeterProvider(ctx, res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	lp, err := otelpkg.InitLogProvider(ctx, res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	ctx, logger := loggerpkg.Init(ctx, serviceInfo, lp)

	return ctx, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if tp != nil {
			//nolint:errcheck // Best-effort provider shutdown
			tp.Shutdown(shutdownCtx)
		}
		if mp != nil {
			//nolint:errcheck // Best-effort provider shutdown
			mp.Shutdown(shutdownCtx)
		}
		if lp != nil {
			//nolint:errcheck // Best-effort provider shutdown
			lp.Shutdown(shutdownCtx)
		}

		//nolint:errcheck // Flush buffered log entries
		logger.Sync()

		cancel()
	}
}
