// Package eventbrite is a read-only client for the Eventbrite v3 events API.
package eventbrite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"innovation-events/internal/logger"
	"innovation-events/internal/metrics"
)

const (
	DefaultBaseURL = "https://www.eventbriteapi.com/v3"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 64 << 10
)

// Client issues authenticated GET requests against the events API.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	online     func() bool
	now        func() time.Time
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithConnectivity installs a probe reporting whether the host is online.
// When it reports false, requests fail with KindOffline.
func WithConnectivity(online func() bool) Option {
	return func(c *Client) { c.online = online }
}

// WithClock overrides the time source used for the date window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for baseURL authenticated with token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		now:        time.Now,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs a GET on rawURL and decodes the JSON body into out.
// The request is bounded by the client timeout; failures are returned as *Error.
func (c *Client) Request(ctx context.Context, rawURL string, out any) error {
	if c.online != nil && !c.online() {
		return offlineError(nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return timeoutError(err)
		}
		return networkError(err)
	}
	return nil
}

// get builds {baseURL}{endpoint}?{params}&token=... and issues the request.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("token", c.token)
	return c.Request(ctx, c.baseURL+endpoint+"?"+q.Encode(), out)
}

func (c *Client) transportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return timeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutError(err)
	}
	if (c.online != nil && !c.online()) || isOffline(err) {
		return offlineError(err)
	}
	return networkError(err)
}

// isOffline reports whether err indicates the host has no usable network.
func isOffline(err error) bool {
	return errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.ENETDOWN)
}

func statusError(resp *http.Response) *Error {
	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, Status: status, Message: "Invalid or expired API token"}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, Message: "Organization or events not found"}
	case status == http.StatusBadRequest:
		var body struct {
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body)
		return &Error{
			Kind:    KindBadRequest,
			Status:  status,
			Message: "Invalid request parameters",
			Details: body.ErrorDescription,
		}
	case status >= 500:
		return &Error{
			Kind:    KindServiceUnavailable,
			Status:  status,
			Message: "Eventbrite service is temporarily unavailable",
			Details: "Please try again later",
		}
	default:
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Kind:    KindRequestFailed,
			Status:  status,
			Message: "Failed to fetch events",
			Details: string(text),
		}
	}
}
