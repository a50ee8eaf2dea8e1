// Package mcp parses gateway flags and environment and selects the stdio or
// HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"net"
	"strconv"

	platformcmd "github.com/louisbranch/flowise-mcp/internal/platform/cmd"
	"github.com/louisbranch/flowise-mcp/internal/platform/config"
	"github.com/louisbranch/flowise-mcp/internal/platform/logging"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/service"
)

// Config holds gateway command configuration.
type Config struct {
	URL        string `env:"FLOWISEAI_URL"           envDefault:"http://localhost:3000"`
	APIKey     string `env:"FLOWISEAI_API_KEY"`
	Transport  string `env:"FLOWISEAI_MCP_TRANSPORT" envDefault:"stdio"`
	Host       string `env:"HOST"                    envDefault:"0.0.0.0"`
	Port       int    `env:"PORT"                    envDefault:"8000"`
	DebugValue string `env:"DEBUG"`

	// Debug is DebugValue as parsed by logging.ParseDebug, unless -debug is
	// given.
	Debug bool
}

// ParseConfig parses environment and flags into a Config. A nil environ
// reads the process environment.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if environ == nil {
		if err := platformcmd.ParseConfig(&cfg); err != nil {
			return Config{}, err
		}
	} else if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "HTTP bind host (for HTTP transport)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP bind port (for HTTP transport)")
	fs.StringVar(&cfg.URL, "url", cfg.URL, "Flowise API endpoint")
	fs.BoolVar(&cfg.Debug, "debug", logging.ParseDebug(cfg.DebugValue), "Enable debug logging")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := service.ParseTransportKind(c.Transport); err != nil {
		return err
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	return flowise.ValidateEndpoint(c.URL)
}

// HTTPAddr is the listen address of the HTTP transport.
func (c Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ServiceConfig converts the command configuration for the service layer.
func (c Config) ServiceConfig() (service.Config, error) {
	transport, err := service.ParseTransportKind(c.Transport)
	if err != nil {
		return service.Config{}, err
	}
	return service.Config{
		Transport: transport,
		HTTPAddr:  c.HTTPAddr(),
		Defaults:  domain.AmbientConfig{Endpoint: c.URL, Credential: c.APIKey},
		Debug:     c.Debug,
	}, nil
}

// Run starts the gateway with tracing installed.
func Run(ctx context.Context, cfg Config) error {
	serviceCfg, err := cfg.ServiceConfig()
	if err != nil {
		return err
	}
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, serviceCfg)
	})
}
