package sonar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// maxBodySnippet bounds how much of an error response body is kept on an
// APIError.
const maxBodySnippet = 512

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("server returned HTTP %d: %s", e.Status, e.Body)
}

// TransportError is a network-level failure: DNS, timeout, refused
// connection. The server was never reached (or never answered).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports an absent entity in a by-key lookup.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.Key) }

// Client issues authenticated requests against a code-quality server.
// It is stateless apart from its configuration and safe for concurrent
// use; in-flight requests do not share mutable state.
type Client struct {
	host  string
	token string
	hc    *http.Client
	log   zerolog.Logger
}

// New builds a Client for the given host and token. A single trailing
// slash on the host is stripped so endpoint paths can be joined naively.
func New(host, token string, log zerolog.Logger) *Client {
	return &Client{
		host:  strings.TrimSuffix(host, "/"),
		token: token,
		hc:    &http.Client{},
		log:   log.With().Str("component", "sonar").Logger(),
	}
}

// get performs one authenticated GET and returns the raw body. The token
// travels as the basic-auth username with an empty password, which is the
// server's token convention. No retries: callers that have a fallback
// endpoint decide for themselves.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "build request")}
	}
	req.SetBasicAuth(c.token, "")

	c.log.Debug().Str("path", path).Msg("GET")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "read body")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxBodySnippet {
			snippet = snippet[:maxBodySnippet]
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("non-2xx response")
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}

	return body, nil
}

// IsNotFound reports whether err is (or wraps) a 404 APIError or a
// NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}
