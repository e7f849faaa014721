package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/logger"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// StatusError is returned for any upstream response with status >= 400.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

// Client calls another service's JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// NewWithHTTPClient is used by tests pointing at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

// Do sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil). The caller identity, when set, is forwarded as the
// gateway identity headers.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, caller *middleware.Identity, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		setIdentity(req.Header, *caller)
	}
	if rid := logger.RequestID(ctx); rid != "" {
		req.Header.Set(middleware.RequestIDHeader, rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func setIdentity(h http.Header, id middleware.Identity) {
	set := func(k, v string) {
		if v != "" {
			h.Set(k, v)
		}
	}
	set(middleware.HeaderUserID, id.UserID)
	set(middleware.HeaderUserRole, id.Role)
	set(middleware.HeaderUserEmail, id.Email)
	set(middleware.HeaderUserName, id.Name)
	set(middleware.HeaderShopID, id.ShopID)
}

// errorMessage extracts {"error": "..."} from an error body, or returns the
// raw (truncated) text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return string(raw)
}
