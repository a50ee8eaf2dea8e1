// Package service wires MCP transports to the tool gateway.
//
// It is the transport adapter layer: the package runs MCP over stdio or
// streamable HTTP, turns the HTTP config query parameter into per-session
// configuration, and delegates tool and resource semantics to the domain
// package.
package service
