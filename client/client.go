package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 10 * time.Second

// MaxBodySize caps how much of an upstream body is read. Longer bodies fail
// to decode.
const MaxBodySize = 1 << 20

var errNotObject = errors.New("response body is not a JSON object")

// Kind classifies why an upstream request failed.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindHTTPStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FetchError is returned by GetJSON for any failed request.
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %s: %s", e.URL, e.Kind, sanitize(e.Err))
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// sanitize keeps error text readable when a proxy answered with an HTML page.
func sanitize(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(strings.ToLower(msg), "<html"); idx >= 0 {
		if idx > 0 {
			return strings.TrimSpace(msg[:idx])
		}
		return "HTML error response"
	}
	return msg
}

// HTTPClient issues single JSON GET requests. Keep-alives are off, so nothing
// is held open between scrapes.
type HTTPClient struct {
	http    *http.Client
	timeout time.Duration
}

// NewHTTPClient returns a client that gives up on each request after timeout.
// A zero timeout means DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
		timeout: timeout,
	}
}

// GetJSON fetches url and decodes the JSON object body into out. Decoding into
// a pre-filled value keeps its fields for keys missing from the body. Trailing
// data after the object is a decode error.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{Kind: KindTransport, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Kind: classify(ctx, err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Kind: KindHTTPStatus, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return &FetchError{Kind: classify(ctx, err), URL: url, Err: err}
	}

	// the whole body must be one JSON object
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &FetchError{Kind: KindDecode, URL: url, Err: errNotObject}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &FetchError{Kind: KindDecode, URL: url, Err: err}
	}
	return nil
}

func classify(ctx context.Context, err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
