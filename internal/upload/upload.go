// Package upload sends the assembled system info document to a remote server.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for upload requests.
const DefaultUserAgent = "system_info/1.0"

// DeviceIDHeader carries the device UUID when one is configured.
const DeviceIDHeader = "X-Device-ID"

// maxResponseBody bounds how much of the server reply is kept.
const maxResponseBody = 64 << 10

// Options configures the upload.
type Options struct {
	URL       string
	Token     string
	DeviceID  uuid.UUID
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// Result holds the server's reply.
type Result struct {
	StatusCode int
	Body       string
}

// Error represents a failed upload.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upload error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload error for %s: %s (status %d)", e.URL, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("upload error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CheckToken rejects a JWT bearer token whose exp claim is in the past.
// Tokens that are not JWTs are passed through; the server remains the authority.
func CheckToken(token string) error {
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("malformed token expiry: %w", err)
	}
	if exp != nil && exp.Before(time.Now()) {
		return fmt.Errorf("token expired at %s", exp.UTC().Format(time.RFC3339))
	}
	return nil
}

// Send PUTs doc to opts.URL.
func Send(ctx context.Context, doc []byte, opts *Options) (*Result, error) {
	if opts == nil {
		return nil, &Error{Message: "no upload options"}
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: opts.URL, Message: "invalid URL", Cause: err}
	}

	if err := CheckToken(opts.Token); err != nil {
		return nil, &Error{URL: opts.URL, Message: "refusing to send", Cause: err}
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, opts.URL, bytes.NewReader(doc))
	if err != nil {
		return nil, &Error{URL: opts.URL, Message: "failed to create request", Cause: err}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	if opts.DeviceID != uuid.Nil {
		req.Header.Set(DeviceIDHeader, opts.DeviceID.String())
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: opts.URL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &Error{URL: opts.URL, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "server rejected document"
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			msg += ": " + trimmed
		}
		return nil, &Error{URL: opts.URL, Message: msg, StatusCode: resp.StatusCode}
	}

	return &Result{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
