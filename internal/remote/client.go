// Package remote is the HTTP adapter for a species data service.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
)

// SpeciesDocument is the wire shape of GET {base}/species/{id}. The API
// package serves the same document.
type SpeciesDocument struct {
	Species    string                           `json:"species"`
	Name       string                           `json:"name,omitempty"`
	Properties map[models.Field]models.Quantity `json:"properties"`
	Tiers      map[models.Field]models.Tier     `json:"tiers,omitempty"`
}

// Client fetches species records over HTTP.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends a Bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", u.Scheme)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch implements resolver.Remote. A 404 maps to apperr.ErrNotFound; any
// other non-2xx status is a transient error.
func (c *Client) Fetch(ctx context.Context, id string) (models.Record, error) {
	endpoint := c.base.JoinPath("species", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("remote: %s: %w", id, apperr.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("remote: fetch %s: status %d", id, resp.StatusCode)
	}

	var doc SpeciesDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("remote: decode %s: %w", id, err)
	}
	rec := make(models.Record, len(doc.Properties))
	for _, f := range models.Fields {
		if q, ok := doc.Properties[f]; ok {
			rec[f] = q
		}
	}
	return rec, nil
}
