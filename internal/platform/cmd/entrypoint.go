// Package cmd holds the shared entrypoint plumbing for CLI commands:
// tracing setup and its bounded shutdown around the command's run loop.
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Nyeriah/mod-zone-difficulty/internal/platform/otel"
)

const otelShutdownTimeout = 5 * time.Second

// RunWithTelemetry sets up tracing for the named command, executes run
// and flushes pending spans before returning.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	return run(ctx)
}
