package domain

import "context"

// PingToolName is the health check tool. It answers in test mode and never
// reports an error.
const PingToolName = "ping"

const (
	pingTestMode = "pong (test mode)"
	pingOffline  = "pong (offline)"
)

func healthTools() []toolSpec {
	return []toolSpec{
		newTool(PingToolName, "Health check endpoint", ping),
	}
}

func ping(ctx context.Context, api API, _ EmptyInput) (string, error) {
	return api.Ping(ctx)
}
