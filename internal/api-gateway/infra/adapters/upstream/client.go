// Package upstream talks to the external product API that the gateway
// fronts. Every call is a fresh authenticated round-trip: no caching and no
// retries.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
)

const (
	DefaultLimit = 10

	// apiKeyParam is how the upstream expects the key: as a query parameter,
	// not a header.
	apiKeyParam = "X-KEYALI-API"

	// The upstream rejects requests that carry Go's default user agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.0; WOW64; rv:24.0) Gecko/20100101 Firefox/24.0"

	maxErrorBody = 64 << 10
)

var _ ports.Catalog = (*Client)(nil)

type Config struct {
	BaseURL   string
	APIKey    string
	Username  string
	Password  string
	UserAgent string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
	// Transport is wrapped with otelhttp; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	username   string
	password   string
	userAgent  string
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if cfg.APIKey == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("upstream API key and basic credentials are required")
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		username:  cfg.Username,
		password:  cfg.Password,
		userAgent: userAgent,
	}, nil
}

// FetchItem resolves a single item by its upstream identifier.
func (c *Client) FetchItem(ctx context.Context, id string) (*entity.Item, error) {
	var body struct {
		Response struct {
			Item *itemDTO `json:"item"`
		} `json:"response"`
	}
	if err := c.get(ctx, "/item/"+url.PathEscape(id), nil, &body); err != nil {
		return nil, err
	}
	if body.Response.Item == nil {
		return nil, &entity.UpstreamError{StatusCode: http.StatusOK, Message: "malformed response: missing item"}
	}

	item := body.Response.Item.toEntity()
	return &item, nil
}

// FetchItems lists up to limit items; limit <= 0 means DefaultLimit.
func (c *Client) FetchItems(ctx context.Context, limit int) ([]entity.Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var body struct {
		Response struct {
			Items *[]itemDTO `json:"items"`
		} `json:"response"`
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/items", query, &body); err != nil {
		return nil, err
	}
	if body.Response.Items == nil {
		return nil, &entity.UpstreamError{StatusCode: http.StatusOK, Message: "malformed response: missing items"}
	}

	dtos := *body.Response.Items
	items := make([]entity.Item, len(dtos))
	for i, d := range dtos {
		items[i] = d.toEntity()
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set(apiKeyParam, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return &entity.UpstreamError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &entity.UpstreamError{Message: transportMessage(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &entity.UpstreamError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

func newStatusError(resp *http.Response) *entity.UpstreamError {
	upErr := &entity.UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
	if upErr.Message == "" {
		upErr.Message = "unexpected status"
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 && json.Valid(raw) {
		upErr.Payload = json.RawMessage(raw)
	}
	return upErr
}

func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return err.Error()
}
