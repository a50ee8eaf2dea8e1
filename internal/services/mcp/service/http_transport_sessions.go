package service

import (
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// sessionServers tracks the per-session servers created by the HTTP
// binding so shutdown can close their sessions.
type sessionServers struct {
	mu      sync.Mutex
	servers map[*mcp.Server]time.Time
	now     func() time.Time
}

func newSessionServers() *sessionServers {
	return &sessionServers{
		servers: make(map[*mcp.Server]time.Time),
		now:     time.Now,
	}
}

func (s *sessionServers) add(server *mcp.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers[server] = s.now()
}

// sweep forgets servers older than grace that have no open session, and
// returns the open session count and the number of servers dropped. The
// grace period covers the gap between building a server and connecting its
// session.
func (s *sessionServers) sweep(grace time.Duration) (open, pruned int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-grace)
	for server, created := range s.servers {
		sessions := countSessions(server)
		open += sessions
		if sessions == 0 && created.Before(cutoff) {
			delete(s.servers, server)
			pruned++
		}
	}
	return open, pruned
}

// closeAll closes every open session and forgets all servers. It returns
// the number of sessions closed.
func (s *sessionServers) closeAll() int {
	s.mu.Lock()
	servers := s.servers
	s.servers = make(map[*mcp.Server]time.Time)
	s.mu.Unlock()

	closed := 0
	for server := range servers {
		for session := range server.Sessions() {
			_ = session.Close()
			closed++
		}
	}
	return closed
}

func (s *sessionServers) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.servers)
}

func countSessions(server *mcp.Server) int {
	n := 0
	for range server.Sessions() {
		n++
	}
	return n
}
