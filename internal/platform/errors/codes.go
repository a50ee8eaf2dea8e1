// Package errors provides structured errors for the tool gateway.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Remote API errors
	CodeRemoteUnreachable Code = "REMOTE_UNREACHABLE"
	CodeRemoteRejected    Code = "REMOTE_REJECTED"
	CodeDecodeFailure     Code = "DECODE_FAILURE"

	// Tool call errors
	CodeArgumentInvalid     Code = "ARGUMENT_INVALID"
	CodeToolUnknown         Code = "TOOL_UNKNOWN"
	CodeTestModeUnavailable Code = "TEST_MODE_UNAVAILABLE"
)

// Remote reports whether the code describes a failure talking to the remote API.
func (c Code) Remote() bool {
	switch c {
	case CodeRemoteUnreachable, CodeRemoteRejected, CodeDecodeFailure:
		return true
	default:
		return false
	}
}
