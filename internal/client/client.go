// Package client calls the timecode HTTP API.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quic-go/quic-go/http3"

	"github.com/zsiec/timecode/internal/api"
	apperrors "github.com/zsiec/timecode/internal/errors"
	"github.com/zsiec/timecode/pkg/version"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Type       apperrors.ErrorType
	Code       string
	Message    string
	TraceID    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Option configures a Client.
type Option func(*options)

type options struct {
	http3    bool
	insecure bool
	timeout  time.Duration
	client   *http.Client
}

// WithHTTP3 sends requests over QUIC. The base URL must be https.
func WithHTTP3() Option {
	return func(o *options) { o.http3 = true }
}

// WithInsecure skips TLS certificate verification.
func WithInsecure() Option {
	return func(o *options) { o.insecure = true }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient uses c as is, ignoring the transport options.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// Client talks to one service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL, for example "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.client
	if httpClient == nil {
		tlsConfig := &tls.Config{InsecureSkipVerify: o.insecure} //nolint:gosec // opt-in for self-signed dev certificates
		var transport http.RoundTripper = &http.Transport{TLSClientConfig: tlsConfig}
		if o.http3 {
			transport = &http3.RoundTripper{TLSClientConfig: tlsConfig}
		}
		httpClient = &http.Client{Transport: transport, Timeout: o.timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Close releases transport resources such as QUIC connections.
func (c *Client) Close() error {
	if closer, ok := c.http.Transport.(io.Closer); ok {
		return closer.Close()
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) FromSeconds(ctx context.Context, req api.FromSecondsRequest) (*api.FromSecondsResponse, error) {
	var resp api.FromSecondsResponse
	if err := c.post(ctx, api.OpFromSeconds, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ToSeconds(ctx context.Context, req api.ToSecondsRequest) (*api.ToSecondsResponse, error) {
	var resp api.ToSecondsResponse
	if err := c.post(ctx, api.OpToSeconds, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Short(ctx context.Context, req api.ShortRequest) (*api.ShortResponse, error) {
	var resp api.ShortResponse
	if err := c.post(ctx, api.OpShort, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Validate(ctx context.Context, req api.ValidateRequest) (*api.ValidateResponse, error) {
	var resp api.ValidateResponse
	if err := c.post(ctx, api.OpValidate, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Ranges(ctx context.Context, req api.RangesRequest) (*api.RangesResponse, error) {
	var resp api.RangesResponse
	if err := c.post(ctx, api.OpRanges, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Rates(ctx context.Context) (*api.RatesResponse, error) {
	var resp api.RatesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/timecode/rates", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Version(ctx context.Context) (*version.Info, error) {
	var resp version.Info
	if err := c.do(ctx, http.MethodGet, "/version", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, op string, body, dst interface{}) error {
	return c.do(ctx, http.MethodPost, "/api/v1/timecode/"+op, body, dst)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, data)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, data []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body apperrors.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		apiErr.Type = body.Error.Type
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
		apiErr.TraceID = body.TraceID
	}
	return apiErr
}
