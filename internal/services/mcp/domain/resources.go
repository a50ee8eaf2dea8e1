package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server identity advertised to MCP clients.
const (
	ServerName    = "flowiseai-mcp"
	ServerVersion = "1.0.0"
)

const (
	serverConfigURI     = "config://server"
	connectionStatusURI = "status://connection"
	healthStatusURI     = "status://health"
	resourceMIMEType    = "application/json"
)

// Capabilities lists the feature areas reported by the health resource.
var Capabilities = []string{
	"assistants",
	"chatflows",
	"predictions",
	"streaming",
	"agentflow_v2",
	"document_store",
	"vector_operations",
	"uploads",
	"hitl",
	"session_management",
}

// ConfigResolver returns the configuration a resource read runs with.
type ConfigResolver func(req *mcp.ReadResourceRequest) AmbientConfig

// ServerConfigPayload represents the MCP resource payload for the effective
// configuration. The credential itself is never exposed.
type ServerConfigPayload struct {
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	TestMode bool   `json:"test_mode"`
}

// ConnectionStatusPayload represents the MCP resource payload for remote
// reachability.
type ConnectionStatusPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthPayload represents the MCP resource payload for gateway health.
type HealthPayload struct {
	Server       string   `json:"server"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
	TestMode     bool     `json:"test_mode"`
}

// ServerConfigResource defines the MCP resource for the effective configuration.
func ServerConfigResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "server_config",
		Title:       "Server configuration",
		Description: "Effective Flowise endpoint and whether a credential is configured",
		MIMEType:    resourceMIMEType,
		URI:         serverConfigURI,
	}
}

// ConnectionStatusResource defines the MCP resource for remote reachability.
func ConnectionStatusResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "connection_status",
		Title:       "Connection status",
		Description: "Whether the Flowise instance answers a ping",
		MIMEType:    resourceMIMEType,
		URI:         connectionStatusURI,
	}
}

// HealthResource defines the MCP resource for gateway health.
func HealthResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "health",
		Title:       "Gateway health",
		Description: "Gateway version, capabilities and test mode",
		MIMEType:    resourceMIMEType,
		URI:         healthStatusURI,
	}
}

// ServerConfigResourceHandler returns the configuration resource.
func ServerConfigResourceHandler(resolve ConfigResolver) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		cfg := resolve(req)
		payload := ServerConfigPayload{
			BaseURL:  cfg.EffectiveEndpoint(),
			APIKey:   "Not set",
			TestMode: cfg.TestMode(),
		}
		if cfg.Credential != "" {
			payload.APIKey = "***"
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal server config: %w", err)
		}
		return resourceResult(serverConfigURI, data), nil
	}
}

// ConnectionStatusResourceHandler returns the reachability resource. Outside
// test mode every read pings the remote.
func ConnectionStatusResourceHandler(resolve ConfigResolver, factory ClientFactory) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if factory == nil {
			return nil, fmt.Errorf("connection status client factory is not configured")
		}
		cfg := resolve(req)
		payload := connectionStatus(ctx, cfg, factory)
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal connection status: %w", err)
		}
		return resourceResult(connectionStatusURI, data), nil
	}
}

// HealthResourceHandler returns the health resource.
func HealthResourceHandler(resolve ConfigResolver) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		cfg := resolve(req)
		data, err := json.Marshal(HealthPayload{
			Server:       "running",
			Version:      ServerVersion,
			Capabilities: Capabilities,
			TestMode:     cfg.TestMode(),
		})
		if err != nil {
			return nil, fmt.Errorf("marshal health: %w", err)
		}
		return resourceResult(healthStatusURI, data), nil
	}
}

func connectionStatus(ctx context.Context, cfg AmbientConfig, factory ClientFactory) ConnectionStatusPayload {
	if cfg.TestMode() {
		return ConnectionStatusPayload{
			Status:  "test_mode",
			Message: "Running in test mode without FlowiseAI connection",
		}
	}
	api := factory(cfg)
	defer api.Close()

	message, err := api.Ping(ctx)
	if err != nil {
		log.Debug().Err(err).Str("resource", connectionStatusURI).Msg("flowise ping failed")
		return ConnectionStatusPayload{
			Status:  "disconnected",
			Message: "Unable to connect to FlowiseAI",
		}
	}
	return ConnectionStatusPayload{Status: "connected", Message: message}
}

func resourceResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: resourceMIMEType,
				Text:     string(data),
			},
		},
	}
}
