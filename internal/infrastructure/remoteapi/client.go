// Package remoteapi is a typed client for the Social World REST API.
//
// Every call takes the caller's bearer token snapshot. The client never
// inspects the token; the API authorizes each request on its own.
package remoteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/honeynil/SocialWorld-web/internal/infrastructure/observability"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxErrorBody = 4 << 10

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote api: status %d", e.Status)
	}
	return fmt.Sprintf("remote api: status %d: %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case pkgerrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case pkgerrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message extracts the API's own wording, falling back to fallback for
// anything that is not an *Error with a message.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host required", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// endpoint joins an already escaped path onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// call performs one request. body may be nil, an io.Reader (sent as is with
// contentType) or any value encoded as JSON. out may be nil.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, token string, body any, contentType string, out any) (err error) {
	tracer := otel.Tracer("remote-api")
	ctx, span := tracer.Start(ctx, op)
	span.SetAttributes(attribute.String("http.method", method), attribute.String("api.path", path))
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RemoteCalls.WithLabelValues(op, status).Inc()
		observability.RemoteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		span.End()
	}()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		payload, mErr := json.Marshal(b)
		if mErr != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("remote api call failed", "op", op, "path", path, "error", err)
		return fmt.Errorf("%s: %w: %v", op, pkgerrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Error
		}
		slog.Warn("remote api returned error", "op", op, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, token string, out any) error {
	return c.call(ctx, op, http.MethodGet, path, query, token, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path, token string, in, out any) error {
	return c.call(ctx, op, method, path, nil, token, in, "", out)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
