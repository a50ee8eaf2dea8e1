package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDescriptor is the advertised form of a tool: its name, a description
// and the JSON schema of its arguments.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Tool returns the MCP definition of the descriptor. The schema is cloned so
// callers cannot alter the shared catalog.
func (d ToolDescriptor) Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema.CloneSchemas(),
	}
}

// toolSpec is one row of the tool table. The catalog and the routing table
// are both derived from it.
type toolSpec struct {
	name        string
	description string
	input       func() (*jsonschema.Schema, error)
	invoke      invokeFunc
}

type invokeFunc func(ctx context.Context, api API, args json.RawMessage) (string, error)

// route is the dispatch entry of a tool.
type route struct {
	schema *jsonschema.Resolved
	invoke invokeFunc
}

type catalog struct {
	descriptors []ToolDescriptor
	routes      map[string]route
}

// schemaRefinement adjusts a generated input schema with constraints Go
// types cannot express.
type schemaRefinement func(*jsonschema.Schema)

// newTool builds a table row whose arguments decode into In. The input
// schema is generated from In's fields.
func newTool[In any](name, description string, run func(context.Context, API, In) (string, error), refinements ...schemaRefinement) toolSpec {
	return toolSpec{
		name:        name,
		description: description,
		input: func() (*jsonschema.Schema, error) {
			return inputSchema[In](refinements...)
		},
		invoke: func(ctx context.Context, api API, args json.RawMessage) (string, error) {
			var in In
			if err := json.Unmarshal(args, &in); err != nil {
				return "", apperrors.Wrap(apperrors.CodeArgumentInvalid, "decode arguments", err)
			}
			return run(ctx, api, in)
		},
	}
}

func inputSchema[In any](refinements ...schemaRefinement) (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, err
	}
	// Callers may send fields newer Flowise releases accept.
	schema.AdditionalProperties = nil
	if schema.Properties == nil {
		schema.Properties = map[string]*jsonschema.Schema{}
	}
	for _, refine := range refinements {
		refine(schema)
	}
	return schema, nil
}

// enumProperty restricts a string property to the given values.
func enumProperty(name string, values ...string) schemaRefinement {
	return func(s *jsonschema.Schema) {
		property, ok := s.Properties[name]
		if !ok {
			return
		}
		property.Enum = make([]any, len(values))
		for i, value := range values {
			property.Enum[i] = value
		}
	}
}

// rangeProperty bounds a numeric property inclusively.
func rangeProperty(name string, minimum, maximum float64) schemaRefinement {
	return func(s *jsonschema.Schema) {
		property, ok := s.Properties[name]
		if !ok {
			return
		}
		property.Minimum = jsonschema.Ptr(minimum)
		property.Maximum = jsonschema.Ptr(maximum)
	}
}

// toolTable lists every tool in catalog order.
func toolTable() []toolSpec {
	groups := [][]toolSpec{
		assistantTools(),
		chatflowTools(),
		predictionTools(),
		chatMessageTools(),
		attachmentTools(),
		feedbackTools(),
		leadTools(),
		customToolTools(),
		variableTools(),
		documentStoreTools(),
		vectorTools(),
		upsertHistoryTools(),
		healthTools(),
	}
	return slices.Concat(groups...)
}

var loadCatalog = sync.OnceValues(func() (*catalog, error) {
	return buildCatalog(toolTable())
})

func buildCatalog(specs []toolSpec) (*catalog, error) {
	c := &catalog{
		descriptors: make([]ToolDescriptor, 0, len(specs)),
		routes:      make(map[string]route, len(specs)),
	}
	for _, spec := range specs {
		schema, err := spec.input()
		if err != nil {
			return nil, fmt.Errorf("build %s input schema: %w", spec.name, err)
		}
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve %s input schema: %w", spec.name, err)
		}
		c.descriptors = append(c.descriptors, ToolDescriptor{
			Name:        spec.name,
			Description: spec.description,
			InputSchema: schema,
		})
		if _, exists := c.routes[spec.name]; !exists {
			c.routes[spec.name] = route{schema: resolved, invoke: spec.invoke}
		}
	}
	return c, nil
}

// Catalog returns the advertised tools in catalog order.
func Catalog() ([]ToolDescriptor, error) {
	c, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.descriptors), nil
}

// VerifyCatalog checks that descriptors and routed tool names describe the
// same set: each descriptor is routed exactly once and every route is
// advertised.
func VerifyCatalog(descriptors []ToolDescriptor, routed []string) error {
	advertised := make(map[string]int, len(descriptors))
	for _, descriptor := range descriptors {
		advertised[descriptor.Name]++
	}
	routes := make(map[string]int, len(routed))
	for _, name := range routed {
		routes[name]++
	}

	var problems []string
	for _, descriptor := range descriptors {
		name := descriptor.Name
		switch {
		case advertised[name] > 1:
			problems = append(problems, fmt.Sprintf("tool %q advertised %d times", name, advertised[name]))
			advertised[name] = 1
		case routes[name] == 0:
			problems = append(problems, fmt.Sprintf("tool %q has no route", name))
		case routes[name] > 1:
			problems = append(problems, fmt.Sprintf("tool %q routed %d times", name, routes[name]))
		}
	}
	for _, name := range routed {
		if advertised[name] == 0 {
			problems = append(problems, fmt.Sprintf("route %q is not advertised", name))
			advertised[name] = -1
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("tool catalog mismatch: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *catalog) routedNames() []string {
	names := make([]string, 0, len(c.routes))
	for name := range c.routes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// normalizeArguments returns the raw arguments as a JSON object, treating
// absent arguments as an empty object.
func normalizeArguments(raw json.RawMessage) (json.RawMessage, map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	var instance map[string]any
	if err := json.Unmarshal(trimmed, &instance); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeArgumentInvalid, "arguments must be a JSON object", err)
	}
	if instance == nil {
		instance = map[string]any{}
	}
	return trimmed, instance, nil
}
