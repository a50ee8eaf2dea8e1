// Package domain maps MCP tool calls onto Flowise REST operations.
//
// The package owns the tool catalog, the per-call configuration value and
// the Dispatcher that turns a tool call into exactly one text result:
//   - the catalog and the routing table are built from the same tool table,
//   - every call is gated on test mode before any outbound request,
//   - and every failure is converted into an error-shaped result.
//
// Nothing here knows about a transport; the service package binds the
// Dispatcher to stdio and streamable HTTP sessions.
package domain
