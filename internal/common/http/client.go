package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"iedi-workers/internal/common/metrics"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID pins the correlation ID used for outbound requests made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client is a single-attempt HTTP client: it never retries, it tags and measures.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWith wraps an existing client, e.g. an httptest server's.
func NewClientWith(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// Do sends req once. endpoint is the low-cardinality label used for metrics ("GET /api/analyses/{id}").
func (c *Client) Do(ctx context.Context, req *http.Request, endpoint string) (*http.Response, error) {
	req = req.WithContext(ctx)

	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	metrics.BackendRequests.WithLabelValues(endpoint, code).Inc()

	return resp, err
}
