package box

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/logging"
)

// maxRetryAfter caps how long a Retry-After header can stall a request.
const maxRetryAfter = time.Minute

// Client issues requests against the Box API. It implements Requester.
//
// Each request runs on its own goroutine and completes by calling its
// Handler exactly once. Use Wait to block until in-flight requests finish.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries uint
	retryDelay time.Duration
	logger     logging.Logger
	metrics    *instrumentation.Metrics
	wg         sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Credentials from Config are not
// applied to it, which is what tests against httptest servers want.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client for the given account configuration.
// ctx is used for token refreshes and should live as long as the client.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  "boxmcp",
		maxRetries: cfg.Retries(),
		retryDelay: cfg.RetryDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid Box configuration: %w", err)
		}
		ts, err := cfg.TokenSource(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create token source: %w", err)
		}
		if cfg.DeveloperToken != "" {
			c.logger.Debug("authenticating with developer token", "token", logging.SanitizeToken(cfg.DeveloperToken))
		} else {
			c.logger.Debug("authenticating with client credentials", "subject_type", cfg.SubjectType)
		}
		c.httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   otelhttp.NewTransport(http.DefaultTransport),
			},
		}
	}

	return c, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, params *Params, h Handler) {
	c.start(ctx, http.MethodGet, path, params, h)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, params *Params, h Handler) {
	c.start(ctx, http.MethodPost, path, params, h)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, params *Params, h Handler) {
	c.start(ctx, http.MethodPut, path, params, h)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, params *Params, h Handler) {
	c.start(ctx, http.MethodDelete, path, params, h)
}

// DefaultResponseHandler returns the standard Handler for cb.
func (c *Client) DefaultResponseHandler(cb Callback) Handler {
	return ResponseHandler(cb)
}

// Wait blocks until all requests started so far have completed.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) start(ctx context.Context, method, path string, params *Params, h Handler) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		resp, err := c.do(ctx, method, path, params)
		if h != nil {
			h(resp, err)
		}
	}()
}

// statusError marks a response that should be retried.
type statusError struct {
	resp *Response
}

func (e *statusError) Error() string {
	return "retryable response status " + strconv.Itoa(e.resp.StatusCode)
}

func (c *Client) do(ctx context.Context, method, path string, params *Params) (*Response, error) {
	started := time.Now()
	resource := instrumentation.APIResource(path)

	target := c.baseURL + path
	var body []byte
	if params != nil {
		query, err := params.Query.Encode()
		if err != nil {
			return nil, err
		}
		if query != "" {
			target += "?" + query
		}
		if params.Body != nil {
			body, err = json.Marshal(params.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
		}
	}

	var resp *Response
	err := retry.Do(
		func() error {
			r, err := c.roundTrip(ctx, method, target, body)
			if err != nil {
				return err
			}
			resp = r
			if retryableStatus(r.StatusCode) {
				return &statusError{resp: r}
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries+1),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(maxRetryAfter),
		retry.LastErrorOnly(true),
		retry.DelayType(retryAfterDelay),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.metrics.RecordBoxAPIRetry(ctx, method, resource)
			c.logger.Warn("retrying Box API request",
				logging.Request(method, path),
				logging.Attempt(n+1), logging.Err(err))
		}),
	)

	// Out of retries on a 429 or 5xx: the final response goes to the handler.
	var se *statusError
	if errors.As(err, &se) {
		resp, err = se.resp, nil
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.RecordBoxAPIRequest(ctx, method, resource, status, time.Since(started))

	if err != nil {
		c.logger.Error("Box API request failed",
			logging.Request(method, path), logging.Err(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("Box API request completed",
		logging.Request(method, path),
		logging.StatusCode(status), "duration", time.Since(started))
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// retryAfterDelay honors a Retry-After header on the last response and falls
// back to exponential backoff.
func retryAfterDelay(n uint, err error, config *retry.Config) time.Duration {
	var se *statusError
	if errors.As(err, &se) {
		if secs, convErr := strconv.Atoi(se.resp.Header.Get("Retry-After")); convErr == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return retry.BackOffDelay(n, err, config)
}
