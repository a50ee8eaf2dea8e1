package domain

import (
	"strings"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// TestModeCredential is the placeholder credential that keeps the gateway
// in test mode.
const TestModeCredential = "test-key"

// AmbientConfig is the remote endpoint and credential a call runs with. It
// is a value: each session captures its own copy and per-request overrides
// produce new copies.
type AmbientConfig struct {
	Endpoint   string
	Credential string
}

// ConfigOverride is the client-supplied configuration blob. Absent fields
// keep the base value.
type ConfigOverride struct {
	Credential *string `json:"flowiseaiApiKey,omitempty"`
	Endpoint   *string `json:"flowiseaiUrl,omitempty"`
}

// TestMode reports whether no usable credential is configured. In test mode
// only ping answers and no outbound request is made.
func (c AmbientConfig) TestMode() bool {
	credential := strings.TrimSpace(c.Credential)
	return credential == "" || credential == TestModeCredential
}

// EffectiveEndpoint returns the normalized API root the config points at.
func (c AmbientConfig) EffectiveEndpoint() string {
	return flowise.NormalizeEndpoint(c.Endpoint)
}

// Apply returns a copy of c with the override's fields layered on top.
// Empty override values are ignored.
func (c AmbientConfig) Apply(override ConfigOverride) AmbientConfig {
	if override.Credential != nil && strings.TrimSpace(*override.Credential) != "" {
		c.Credential = strings.TrimSpace(*override.Credential)
	}
	if override.Endpoint != nil && strings.TrimSpace(*override.Endpoint) != "" {
		c.Endpoint = strings.TrimSpace(*override.Endpoint)
	}
	return c
}

// Empty reports whether the override carries no values.
func (o ConfigOverride) Empty() bool {
	return (o.Credential == nil || strings.TrimSpace(*o.Credential) == "") &&
		(o.Endpoint == nil || strings.TrimSpace(*o.Endpoint) == "")
}
