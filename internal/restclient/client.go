package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/dto"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// APIError is a non-2xx answer of the storefront API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     domain.FieldErrors
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the storefront REST API. It satisfies port.ProductLister
// and port.OrderCreator.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL: base,
		logger:  zap.NewNop(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			}),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var body []dto.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &body); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(body))
	for idx, p := range body {
		product, err := p.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("product[%d].ToDomain: %w", idx, err)
		}
		products = append(products, product)
	}

	return products, nil
}

// InsertOrder posts the order. The idempotency key travels in a header so a
// retried request after a lost response returns the stored order.
func (c *Client) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	req, err := dto.NewOrderRequest(order)
	if err != nil {
		return uuid.Nil, fmt.Errorf("dto.NewOrderRequest: %w", err)
	}

	headers := http.Header{}
	if order.IdempotencyKey != uuid.Nil {
		headers.Set(IdempotencyKeyHeader, order.IdempotencyKey.String())
	}

	var stored dto.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, headers, &stored); err != nil {
		return uuid.Nil, err
	}

	c.logger.Debug("order posted", zap.Stringer("order_id", stored.ID))

	return stored.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, headers http.Header, out any) error {
	u := c.baseURL.JoinPath(path)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.Join(apiErr, fmt.Errorf("read error body: %w", err))
	}

	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
