package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/circuitbreaker"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCatalogUnavailable wraps every failure to obtain a product list.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

const (
	accessKeyHeader = "X-Access-Key"
	maxPayloadSize  = 4 << 20
)

// Config holds the catalog endpoint and fetch policy
type Config struct {
	URL       string
	AccessKey string
	Timeout   time.Duration
	Breaker   circuitbreaker.Settings
}

// Client reads the product list from a jsonbin.io style document
type Client struct {
	httpClient *http.Client
	url        string
	accessKey  string
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[[]domain.Product]
	sfg        singleflight.Group // coalesces concurrent fetches
	log        *zap.Logger
}

// NewClient builds a client. A nil httpClient gets an otelhttp instrumented default.
func NewClient(cfg Config, httpClient *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{
		httpClient: httpClient,
		url:        strings.TrimRight(cfg.URL, "/"),
		accessKey:  cfg.AccessKey,
		timeout:    cfg.Timeout,
		breaker:    circuitbreaker.New[[]domain.Product]("catalog", cfg.Breaker, log),
		log:        log.Named("catalog"),
	}
}

// Products fetches and validates the current product list. The shared fetch
// outlives any single caller, bounded by the client timeout, so one caller
// going away neither fails the others nor counts against the breaker.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.sfg.DoChan("products", func() (interface{}, error) {
		return c.breaker.Execute(func() ([]domain.Product, error) {
			return c.fetch(fetchCtx)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		if errors.Is(res.Err, gobreaker.ErrOpenState) || errors.Is(res.Err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, res.Err)
		}
		return nil, res.Err
	}

	// callers sharing a singleflight result must not share the slice
	products := res.Val.([]domain.Product)
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

func (c *Client) fetch(ctx context.Context) ([]domain.Product, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/latest", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessKey != "" {
		req.Header.Set(accessKeyHeader, c.accessKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrCatalogUnavailable, err)
	}

	products, err := c.decode(body)
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx, c.log).Info("catalog fetched", zap.Int("products", len(products)))
	return products, nil
}

// document is the jsonbin.io v3 envelope around the product list
type document struct {
	Record struct {
		Products []json.RawMessage `json:"produtos"`
	} `json:"record"`
}

type record struct {
	ID    json.RawMessage  `json:"id"`
	Name  string           `json:"nome"`
	Price *decimal.Decimal `json:"preco"`
	Image string           `json:"imagem"`
}

func (c *Client) decode(body []byte) ([]domain.Product, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %w", ErrCatalogUnavailable, err)
	}

	products := make([]domain.Product, 0, len(doc.Record.Products))
	seen := make(map[string]struct{}, len(doc.Record.Products))
	for i, raw := range doc.Record.Products {
		p, err := parseRecord(raw)
		if err != nil {
			c.log.Warn("skipping catalog entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			c.log.Warn("skipping duplicate catalog entry", zap.Int("index", i), zap.String("product_id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

func parseRecord(raw json.RawMessage) (domain.Product, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Product{}, fmt.Errorf("decode entry: %w", err)
	}

	id, err := parseID(r.ID)
	if err != nil {
		return domain.Product{}, err
	}
	if r.Price == nil {
		return domain.Product{}, fmt.Errorf("product %s: missing price", id)
	}
	if r.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %s: negative price %s", id, r.Price)
	}

	return domain.Product{
		ID:       id,
		Name:     strings.TrimSpace(r.Name),
		Price:    *r.Price,
		ImageURI: r.Image,
	}, nil
}

// parseID accepts a JSON string or number and returns its string form
func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing id")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode id: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number: %w", err)
	}
	return n.String(), nil
}
