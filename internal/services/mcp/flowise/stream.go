package flowise

import (
	"bufio"
	"io"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
)

// DoneMarker is the event payload that ends a prediction stream.
const DoneMarker = "[DONE]"

// maxEventLine bounds a single server-sent event line.
const maxEventLine = 1 << 20

// Stream is a finite, non-restartable sequence of prediction fragments read
// from a server-sent event response. It is driven by the caller:
//
//	for stream.Next() {
//		fragment := stream.Text()
//	}
//	if err := stream.Err(); err != nil { ... }
//
// The sequence ends cleanly only when the remote sends the [DONE] marker. A
// body that ends or fails before the marker ends the sequence with a
// REMOTE_UNREACHABLE error; fragments already returned stay valid.
type Stream struct {
	body      io.ReadCloser
	scanner   *bufio.Scanner
	text      string
	err       error
	done      bool
	closeOnce sync.Once
	closeErr  error
}

// NewStream reads prediction fragments from a server-sent event body. The
// stream takes ownership of body.
func NewStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventLine)
	return &Stream{body: body, scanner: scanner}
}

// Next advances to the next fragment and reports whether there is one.
func (s *Stream) Next() bool {
	if s == nil || s.done {
		return false
	}
	for s.scanner.Scan() {
		payload, ok := eventData(s.scanner.Text())
		if !ok {
			continue
		}
		if strings.TrimSpace(payload) == DoneMarker {
			s.finish(nil)
			return false
		}
		s.text = payload
		return true
	}

	cause := s.scanner.Err()
	if cause == nil {
		cause = io.ErrUnexpectedEOF
	}
	s.finish(apperrors.Wrap(apperrors.CodeRemoteUnreachable, "prediction stream ended before "+DoneMarker, cause))
	return false
}

// Text returns the fragment produced by the last successful Next.
func (s *Stream) Text() string {
	if s == nil {
		return ""
	}
	return s.text
}

// Err returns the error that ended the sequence, or nil after a clean end.
func (s *Stream) Err() error {
	if s == nil {
		return nil
	}
	return s.err
}

// Close releases the response body. It is safe to call more than once.
func (s *Stream) Close() error {
	if s == nil {
		return nil
	}
	s.done = true
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

func (s *Stream) finish(err error) {
	s.text = ""
	s.err = err
	_ = s.Close()
}

// eventData extracts the payload of a "data:" line. Other event fields,
// comments and blank separators are not data.
func eventData(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(payload, " "), true
}
