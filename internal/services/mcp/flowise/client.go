package flowise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
	"github.com/louisbranch/flowise-mcp/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBody caps how much of a rejected response body is kept.
const maxErrorBody = 4 << 10

const (
	contentTypeJSON = "application/json"
	contentTypeSSE  = "text/event-stream"
)

// Options configures a Client.
type Options struct {
	// Endpoint is the user-supplied address; it is normalized by New.
	Endpoint string
	// Credential is sent as a bearer token when set.
	Credential string
	// HTTPClient is a shared connection pool. When nil the client creates
	// and owns its own.
	HTTPClient *http.Client
	// Timeout bounds each non-streaming call. Zero means timeouts.RemoteRequest.
	Timeout time.Duration
}

// Client calls the Flowise REST API for one endpoint and credential.
type Client struct {
	baseURL    string
	credential string
	http       *http.Client
	ownsHTTP   bool
	timeout    time.Duration
	closed     atomic.Bool
}

// NewHTTPClient builds a traced HTTP client suitable for sharing between
// Clients. The response header wait is bounded by timeout; bodies are not,
// so long prediction streams are not cut off.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = timeouts.RemoteRequest
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{
		Transport: otelhttp.NewTransport(transport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "flowise " + r.Method
			}),
		),
	}
}

// New creates a client for the given options.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = timeouts.RemoteRequest
	}
	httpClient := opts.HTTPClient
	owns := false
	if httpClient == nil {
		httpClient = NewHTTPClient(timeout)
		owns = true
	}
	return &Client{
		baseURL:    NormalizeEndpoint(opts.Endpoint),
		credential: strings.TrimSpace(opts.Credential),
		http:       httpClient,
		ownsHTTP:   owns,
		timeout:    timeout,
	}
}

// BaseURL returns the normalized API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the client's idle connections when it owns its pool. It is
// safe to call more than once; calls made after Close fail.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.ownsHTTP {
		c.http.CloseIdleConnections()
	}
	return nil
}

// call issues one JSON request and decodes the response into out when out
// is non-nil. An empty success body leaves out untouched.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, method, path, query, body, contentTypeJSON)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnreachable, fmt.Sprintf("read %s %s response", method, path), err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(apperrors.CodeDecodeFailure, fmt.Sprintf("decode %s %s response", method, path), err)
	}
	return nil
}

// send performs the request and returns the response when its status is
// 2xx. The caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Response, error) {
	if c.closed.Load() {
		return nil, apperrors.New(apperrors.CodeRemoteUnreachable, "flowise client is closed")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeArgumentInvalid, fmt.Sprintf("encode %s %s body", method, path), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRemoteUnreachable, fmt.Sprintf("build %s %s request", method, path), err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRemoteUnreachable, fmt.Sprintf("%s %s", method, path), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, rejected(resp)
	}
	return resp, nil
}

func rejected(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := strings.TrimSpace(string(data))
	message := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if body != "" {
		message += ": " + body
	}
	return apperrors.WithMetadata(apperrors.CodeRemoteRejected, message, map[string]string{
		"status": strconv.Itoa(resp.StatusCode),
		"body":   body,
	})
}

func segment(id string) string {
	return "/" + url.PathEscape(id)
}
