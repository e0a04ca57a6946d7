package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"refdocs-backend/lib/configutil"

	"go.opentelemetry.io/otel"
)

type Telemetry struct {
	shutdownFuncs []func(context.Context) error
}

func (t Telemetry) Shutdown(ctx context.Context) error {
	var errlist []error
	for _, shutdown := range t.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

// InitSlog installs the default text handler; debug toggles verbosity.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it is used to set up the otlp exporters
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[config]("telemetry.json5")
	if err != nil {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, config)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once; missing configuration is not an error so unit
// tests run without an otlp endpoint
func SetupForTesting(t testing.TB, serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	tel, err := SetupFromEnv(context.Background(), serviceName)
	if errors.Is(err, os.ErrNotExist) {
		return func() {}
	}
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
}

func Setup(ctx context.Context, serviceName string, config config) (Telemetry, error) {
	r, err := newResource(serviceName)
	if err != nil {
		return Telemetry{}, err
	}

	tracerProvider, err := newTraceProvider(ctx, r, config)
	if err != nil {
		return Telemetry{}, err
	}
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMetricProvider(ctx, r, config)
	if err != nil {
		return Telemetry{}, err
	}
	otel.SetMeterProvider(meterProvider)

	return Telemetry{
		shutdownFuncs: []func(context.Context) error{
			tracerProvider.Shutdown,
			meterProvider.Shutdown,
		},
	}, nil
}
