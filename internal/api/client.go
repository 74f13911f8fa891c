// Package api provides the HTTP collaborator the engine delivers through.
// The engine assumes at-least-once semantics on Post and does not deduplicate
// server-side.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/estrateji/edusync/internal/errors"
)

// Client is the remote endpoint boundary. Tests substitute fakes.
type Client interface {
	// Post sends body as JSON to path.
	Post(ctx context.Context, path string, body interface{}) error

	// Get fetches path and decodes the JSON response into out.
	Get(ctx context.Context, path string, out interface{}) error
}

// HTTP is the production Client over net/http.
type HTTP struct {
	base string
	hc   *http.Client
}

// NewHTTP creates a Client for the given base URL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: timeout},
	}
}

// Post sends body as JSON to path.
func (c *HTTP) Post(ctx context.Context, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrInvalid, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrRemote, "post "+path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return errors.New(errors.ErrRemote,
			fmt.Sprintf("post %s: unexpected status %d", path, resp.StatusCode))
	}
	return nil
}

// Get fetches path and decodes the JSON response into out.
func (c *HTTP) Get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "build request", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrRemote, "get "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return errors.New(errors.ErrRemote,
			fmt.Sprintf("get %s: unexpected status %d", path, resp.StatusCode))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrRemote, "decode response", err)
	}
	return nil
}
