// Package subscan is a minimal client for the Subscan blockchain explorer API.
//
// It covers the single endpoint this application needs, POST
// /api/scan/extrinsic, and classifies each response into found, not
// found, or API error. Transport and decode failures surface as plain
// errors. There is deliberately no retry or backoff; pacing between
// calls is the caller's responsibility.
package subscan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const extrinsicPath = "/api/scan/extrinsic"

// Client queries the Subscan HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *cache.Cache
	tracer     trace.Tracer
}

// Config holds client construction settings.
type Config struct {
	// BaseURL is the API root, e.g. https://polkadot.api.subscan.io.
	BaseURL string
	// APIKey is optional; when set it is sent as X-API-Key.
	APIKey string
	// Timeout bounds each HTTP call. Zero means 30s.
	Timeout time.Duration
	// CacheTTL is how long decoded responses are kept per hash.
	// Zero disables caching.
	CacheTTL time.Duration
}

// NewClient creates a Subscan client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("subscan base url is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("subscan"),
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c, nil
}

// WithAPIKey returns a shallow copy of the client using a different key.
// The HTTP client and response cache are shared, so per-job key overrides
// still deduplicate requests for the same hash.
func (c *Client) WithAPIKey(key string) *Client {
	if key == "" || key == c.apiKey {
		return c
	}
	clone := *c
	clone.apiKey = key
	return &clone
}

// Extrinsic looks up one transaction hash.
//
// The returned error is non-nil only for transport, encode, or decode
// failures. API-level failures come back as a Lookup with
// StatusAPIError so the caller can keep processing the batch.
func (c *Client) Extrinsic(ctx context.Context, hash string) (*Lookup, error) {
	if c.cache != nil {
		if hit, ok := c.cache.Get(hash); ok {
			cached := *hit.(*Lookup)
			cached.Cached = true
			return &cached, nil
		}
	}

	ctx, span := c.tracer.Start(ctx, "subscan.extrinsic",
		trace.WithAttributes(attribute.String("tx.hash", hash)))
	defer span.End()

	lookup, err := c.fetch(ctx, hash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if c.cache != nil {
		c.cache.SetDefault(hash, lookup)
	}
	return lookup, nil
}

func (c *Client) fetch(ctx context.Context, hash string) (*Lookup, error) {
	payload, err := json.Marshal(map[string]string{"hash": hash})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+extrinsicPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded envelope
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("subscan status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decoded.Message != "Success" {
		msg := decoded.Message
		if msg == "" {
			msg = "Unknown"
		}
		return &Lookup{Status: StatusAPIError, Message: msg}, nil
	}

	if emptyData(decoded.Data) {
		return &Lookup{Status: StatusNotFound}, nil
	}

	var ex Extrinsic
	if err := json.Unmarshal(decoded.Data, &ex); err != nil {
		return nil, fmt.Errorf("decode extrinsic: %w", err)
	}
	return &Lookup{Status: StatusFound, Extrinsic: &ex}, nil
}

// emptyData reports whether the data payload carries no extrinsic.
// Subscan answers unknown hashes with "Success" and a null or empty
// data object.
func emptyData(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null" || trimmed == "{}"
}
