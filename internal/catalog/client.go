package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/televista/storefront-api/internal/resilience"
)

// ErrNotFound indicates the requested product does not exist upstream.
var ErrNotFound = errors.New("catalog: product not found")

// ErrUpstream indicates the commerce backend could not serve the request.
var ErrUpstream = errors.New("catalog: upstream unavailable")

// Client fetches catalog records from the commerce backend.
type Client interface {
	Product(ctx context.Context, id string) (Product, error)
	Products(ctx context.Context, page, limit int) ([]Product, int, error)
	WholesaleProducts(ctx context.Context) ([]WholesaleProduct, error)
	Ping(ctx context.Context) error
}

// RESTClient talks to the commerce backend's catalog API.
type RESTClient struct {
	BaseURL string
	APIKey  string
	HTTP    *resilience.HTTPClient
}

type listEnvelope struct {
	Data  []rawProduct `json:"data"`
	Total int          `json:"total"`
}

type productEnvelope struct {
	Data rawProduct `json:"data"`
}

type wholesaleEnvelope struct {
	Data []rawWholesaleProduct `json:"data"`
}

// Product fetches and validates a single product record.
func (c *RESTClient) Product(ctx context.Context, id string) (Product, error) {
	var envelope productEnvelope
	if err := c.getJSON(ctx, "/v1/products/"+url.PathEscape(id), nil, &envelope); err != nil {
		return Product{}, err
	}
	return normalizeProduct(envelope.Data)
}

// Products fetches a validated page of the catalog.
func (c *RESTClient) Products(ctx context.Context, page, limit int) ([]Product, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	var envelope listEnvelope
	if err := c.getJSON(ctx, "/v1/products", query, &envelope); err != nil {
		return nil, 0, err
	}
	products := make([]Product, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		p, err := normalizeProduct(raw)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, envelope.Total, nil
}

// WholesaleProducts fetches the wholesale catalog with price breaks.
func (c *RESTClient) WholesaleProducts(ctx context.Context) ([]WholesaleProduct, error) {
	var envelope wholesaleEnvelope
	if err := c.getJSON(ctx, "/v1/wholesale/products", nil, &envelope); err != nil {
		return nil, err
	}
	products := make([]WholesaleProduct, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		p, err := normalizeWholesale(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Ping probes the backend health endpoint.
func (c *RESTClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, "/health")
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %s", ErrUpstream, resp.Status)
	}
	return nil
}

func (c *RESTClient) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	req, err := c.newRequest(ctx, path)
	if err != nil {
		return err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s %s returned %s", ErrUpstream, req.Method, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return nil
}

func (c *RESTClient) newRequest(ctx context.Context, path string) (*http.Request, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	return req, nil
}

// MockClient serves a fixed catalog from memory. Useful for development and
// tests.
type MockClient struct {
	Items     []Product
	Wholesale []WholesaleProduct
}

// Product returns the product with the given id.
func (m MockClient) Product(_ context.Context, id string) (Product, error) {
	for _, p := range m.Items {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Products returns one page of the fixed catalog.
func (m MockClient) Products(_ context.Context, page, limit int) ([]Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(m.Items)
	}
	start := (page - 1) * limit
	if start >= len(m.Items) {
		return nil, len(m.Items), nil
	}
	end := start + limit
	if end > len(m.Items) {
		end = len(m.Items)
	}
	return m.Items[start:end], len(m.Items), nil
}

// WholesaleProducts returns the fixed wholesale catalog.
func (m MockClient) WholesaleProducts(context.Context) ([]WholesaleProduct, error) {
	return m.Wholesale, nil
}

// Ping always succeeds.
func (m MockClient) Ping(context.Context) error { return nil }
