package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"callcenter-go/internal/logger"
	"callcenter-go/internal/session"
)

var (
	// ErrUnauthorized means the backend rejected the token (401/403). The
	// stored session has already been cleared when this is returned.
	ErrUnauthorized = errors.New("session rejected by server")
	// ErrMalformed means a 2xx response body could not be decoded.
	ErrMalformed = errors.New("malformed response")
)

// APIError is a non-2xx response. Body is kept verbatim so callers can show it.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

// Client talks to the call-center REST backend.
type Client struct {
	baseURL     string
	http        *http.Client
	store       session.Store
	log         *logger.Logger
	readBackOff func() backoff.BackOff
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithReadRetry bounds how long idempotent reads are retried. Zero disables
// retries.
func WithReadRetry(maxElapsed time.Duration) Option {
	return func(c *Client) {
		if maxElapsed <= 0 {
			c.readBackOff = func() backoff.BackOff { return &backoff.StopBackOff{} }
			return
		}
		c.readBackOff = func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = maxElapsed
			return bo
		}
	}
}

// WithReadBackOff sets the retry schedule for reads directly.
func WithReadBackOff(f func() backoff.BackOff) Option {
	return func(c *Client) { c.readBackOff = f }
}

func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
		log:     logger.New(),
	}
	WithReadRetry(10 * time.Second)(c)
	for _, o := range opts {
		o(c)
	}
	return c
}

// Store exposes the session store the client stamps requests from.
func (c *Client) Store() session.Store { return c.store }

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	public bool
}

func (c *Client) doJSON(ctx context.Context, r request, target interface{}) error {
	body, _, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformed, r.method, r.path, err)
	}
	return nil
}

// do runs the request and returns the raw 2xx body and its content type.
// GETs are retried on network errors and 5xx; everything else runs once.
func (c *Client) do(ctx context.Context, r request) ([]byte, string, error) {
	var token string
	if !r.public {
		sess, err := session.Require(c.store)
		if err != nil {
			return nil, "", err
		}
		token = sess.Token
	}

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	reqID := uuid.New().String()

	var (
		out         []byte
		contentType string
	)
	op := func() error {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, u, rd)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(logger.RequestIDHeader, reqID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
		log := c.log.WithRequest(req)

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			log.WithError(err).Warn("request failed")
			err = fmt.Errorf("%s %s: %w", r.method, r.path, err)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s %s: %w", r.method, r.path, err)
		}
		log.WithField("status", resp.StatusCode).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Debug("request finished")

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			apiErr := &APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: body}
			if !r.public {
				if cerr := c.store.Clear(); cerr != nil {
					log.WithError(cerr).Warn("clear rejected session")
				}
			}
			return backoff.Permanent(fmt.Errorf("%w: %w", ErrUnauthorized, apiErr))
		case resp.StatusCode >= 500:
			return &APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: body}
		case resp.StatusCode >= 300:
			return backoff.Permanent(&APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: body})
		}
		out = body
		contentType = resp.Header.Get("Content-Type")
		return nil
	}

	var bo backoff.BackOff = &backoff.StopBackOff{}
	if r.method == http.MethodGet {
		bo = c.readBackOff()
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, "", err
	}
	return out, contentType, nil
}

// decodeResults accepts either a paginated {"results": [...]} envelope or a
// bare JSON array.
func decodeResults(body []byte, target interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, target); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil
	}
	var env struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(env.Results) == 0 || string(env.Results) == "null" {
		return fmt.Errorf("%w: missing results", ErrMalformed)
	}
	if err := json.Unmarshal(env.Results, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// getList decodes one page of a list endpoint. A paginated envelope's next
// link is not followed.
// TODO: follow next so projects larger than one backend page list fully.
func (c *Client) getList(ctx context.Context, path string, query url.Values, target interface{}) error {
	body, _, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	if err := decodeResults(body, target); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

func idPath(format string, ids ...int64) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
