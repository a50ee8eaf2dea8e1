package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/flowise-mcp/internal/cmd/mcp"
	"github.com/louisbranch/flowise-mcp/internal/platform/config"
	"github.com/louisbranch/flowise-mcp/internal/platform/logging"
	"github.com/rs/zerolog/log"
)

// main starts the Flowise MCP gateway on stdio or HTTP.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		config.Exitf("load environment: %v", err)
	}
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	logging.Setup(cfg.Debug, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("gateway stopped")
		stop()
		config.Exitf("failed to serve MCP: %v", err)
	}
}
