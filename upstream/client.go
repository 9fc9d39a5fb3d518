// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package upstream fetches ingestible sources from the external document
// service. Content extraction problems are soft: a source whose content is
// unavailable yields empty content and no error, leaving it eligible for a
// later retry.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Source describes one upstream source available for ingestion.
type Source struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client lists upstream sources and extracts their content.
type Client interface {
	// ListSources returns the sources currently available upstream.
	ListSources(ctx context.Context) ([]Source, error)

	// FetchContent returns the extracted text content for a source.
	// Unavailable or empty content yields ("", nil); the caller decides
	// whether to skip.
	FetchContent(ctx context.Context, sourceID string) (string, error)
}

// HTTPClient talks to the document service over its JSON API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) {
		c.token = token
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.client.Timeout = timeout
	}
}

// NewHTTPClient creates a client for the document service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("upstream: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("upstream: invalid base url: %w", err)
	}

	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream: %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: %s: decode response: %w", path, err)
	}
	return nil
}

// ListSources fetches the available sources.
func (c *HTTPClient) ListSources(ctx context.Context) ([]Source, error) {
	var payload struct {
		Sources []Source `json:"sources"`
	}
	if err := c.get(ctx, "/v1/sources", &payload); err != nil {
		return nil, err
	}
	return payload.Sources, nil
}

// FetchContent fetches the extracted content of one source. A 404 means the
// source has no extractable content yet; that is not an error.
func (c *HTTPClient) FetchContent(ctx context.Context, sourceID string) (string, error) {
	path := "/v1/sources/" + url.PathEscape(sourceID) + "/content"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("upstream: build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream: %s: unexpected status %d", path, resp.StatusCode)
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("upstream: %s: decode response: %w", path, err)
	}
	return payload.Content, nil
}
