package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	methodCallTool  = "tools/call"
	methodListTools = "tools/list"
)

// registerFlowiseTools advertises every catalog tool on one server. Each
// handler runs with base plus any per-request override.
func registerFlowiseTools(registrar mcpRegistrationTarget, dispatcher *domain.Dispatcher, base domain.AmbientConfig) error {
	for _, descriptor := range dispatcher.Tools() {
		if err := registrar.AddTool(descriptor.Tool(), toolHandler(dispatcher, base)); err != nil {
			return err
		}
	}
	return nil
}

func registerFlowiseResources(registrar mcpRegistrationTarget, factory domain.ClientFactory, base domain.AmbientConfig) {
	resolve := func(req *mcp.ReadResourceRequest) domain.AmbientConfig {
		if req == nil {
			return base
		}
		return resolveConfig(base, requestHeader(req.Extra))
	}
	registrar.AddResource(domain.ServerConfigResource(), domain.ServerConfigResourceHandler(resolve))
	registrar.AddResource(domain.ConnectionStatusResource(), domain.ConnectionStatusResourceHandler(resolve, factory))
	registrar.AddResource(domain.HealthResource(), domain.HealthResourceHandler(resolve))
}

func toolHandler(dispatcher *domain.Dispatcher, base domain.AmbientConfig) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return dispatchToolCall(ctx, dispatcher, base, req), nil
	}
}

// unroutedToolMiddleware sends calls for names the server does not know to
// the dispatcher, so clients get an error-shaped tool result instead of a
// protocol error.
func unroutedToolMiddleware(dispatcher *domain.Dispatcher, base domain.AmbientConfig) mcp.Middleware {
	known := make(map[string]struct{})
	for _, descriptor := range dispatcher.Tools() {
		known[descriptor.Name] = struct{}{}
	}
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodCallTool {
				return next(ctx, method, req)
			}
			call, ok := req.(*mcp.CallToolRequest)
			if !ok || call.Params == nil {
				return next(ctx, method, req)
			}
			if _, found := known[call.Params.Name]; found {
				return next(ctx, method, req)
			}
			return dispatchToolCall(ctx, dispatcher, base, call), nil
		}
	}
}

// catalogOrderMiddleware lists tools in catalog order. The server itself
// sorts them by name.
func catalogOrderMiddleware(dispatcher *domain.Dispatcher) mcp.Middleware {
	position := make(map[string]int)
	for i, descriptor := range dispatcher.Tools() {
		position[descriptor.Name] = i
	}
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			result, err := next(ctx, method, req)
			if err != nil || method != methodListTools {
				return result, err
			}
			listed, ok := result.(*mcp.ListToolsResult)
			if !ok || listed == nil {
				return result, nil
			}
			sort.SliceStable(listed.Tools, func(i, j int) bool {
				return catalogPosition(position, listed.Tools[i]) < catalogPosition(position, listed.Tools[j])
			})
			return listed, nil
		}
	}
}

// catalogPosition places tools outside the catalog after every catalog tool.
func catalogPosition(position map[string]int, tool *mcp.Tool) int {
	if tool != nil {
		if i, ok := position[tool.Name]; ok {
			return i
		}
	}
	return len(position)
}

func dispatchToolCall(ctx context.Context, dispatcher *domain.Dispatcher, base domain.AmbientConfig, req *mcp.CallToolRequest) *mcp.CallToolResult {
	var call domain.ToolCall
	var header http.Header
	if req != nil {
		if req.Params != nil {
			call = domain.ToolCall{Name: req.Params.Name, Arguments: req.Params.Arguments}
		}
		header = requestHeader(req.Extra)
	}
	result := dispatcher.Dispatch(ctx, resolveConfig(base, header), call)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: result.Text}},
		IsError: result.IsError,
	}
}

func requestHeader(extra *mcp.RequestExtra) http.Header {
	if extra == nil {
		return nil
	}
	return extra.Header
}

// newMCPRegistrationModules lists what every gateway server registers.
func newMCPRegistrationModules(g *gateway, base domain.AmbientConfig) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpFlowiseToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerFlowiseTools(registrar, g.dispatcher, base)
			},
		},
		{
			name: mcpFlowiseResourcesModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				if g.factory == nil {
					return fmt.Errorf("client factory is required")
				}
				registerFlowiseResources(registrar, g.factory, base)
				return nil
			},
		},
	}
}
