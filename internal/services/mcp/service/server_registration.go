package service

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

func (k mcpRegistrationKind) String() string {
	switch k {
	case mcpRegistrationKindTools:
		return "tools"
	case mcpRegistrationKindResources:
		return "resources"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpFlowiseToolsModuleName     = "flowise-tools"
	mcpFlowiseResourcesModuleName = "flowise-resources"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, mcp.ToolHandler) error
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

// AddTool registers a raw tool handler. The SDK panics on malformed input
// schemas, so those are reported as errors here instead.
func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) error {
	if tool == nil {
		return fmt.Errorf("tool is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}
	schema, ok := tool.InputSchema.(*jsonschema.Schema)
	if !ok || schema == nil {
		return fmt.Errorf("tool %q has no input schema", tool.Name)
	}
	if schema.Type != "object" {
		return fmt.Errorf("tool %q input schema has type %q, want object", tool.Name, schema.Type)
	}
	r.server.AddTool(tool, handler)
	return nil
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}
