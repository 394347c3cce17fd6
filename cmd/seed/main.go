// Package main seeds the local development databases with tuning fixtures.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	platformcmd "github.com/Nyeriah/mod-zone-difficulty/internal/platform/cmd"
	"github.com/Nyeriah/mod-zone-difficulty/internal/platform/config"
	"github.com/Nyeriah/mod-zone-difficulty/internal/tools/seed"
)

func main() {
	cfg, err := seed.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, "seed", func(ctx context.Context) error {
		return seed.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
