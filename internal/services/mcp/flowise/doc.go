// Package flowise is the HTTP client for the Flowise REST API.
//
// Each exported method issues exactly one request against the normalized API
// root and maps failures onto the gateway error codes: transport failures are
// REMOTE_UNREACHABLE, non-2xx responses are REMOTE_REJECTED carrying the
// status and body, and undecodable bodies are DECODE_FAILURE. Streaming
// predictions are exposed as a pull-based Stream of server-sent event
// payloads.
package flowise
