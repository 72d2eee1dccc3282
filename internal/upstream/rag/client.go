// Package rag is the HTTP client for the retrieval-augmented query server.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/embercortex/embercortex/internal/upstream"
)

// Client calls the RAG server's query and collections endpoints
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a RAG client. Retrieval plus generation is slow, so
// the query timeout matches the completion client's.
func NewClient(baseURL string, connect, total time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: total,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connect}).DialContext,
			},
		},
	}
}

// Source is one retrieved document fragment, ranked by the server in
// descending score order; this client does not re-sort.
type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// QueryResult is the RAG server's answer plus its supporting sources
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

type queryRequest struct {
	Query          string `json:"query"`
	Collection     string `json:"collection"`
	TopK           int    `json:"top_k"`
	IncludeSources bool   `json:"include_sources"`
}

// CollectionInfo describes a collection as reported by the RAG server
type CollectionInfo struct {
	Name     string             `json:"name"`
	Count    int                `json:"count"`
	Metadata CollectionMetadata `json:"metadata"`
}

// CollectionMetadata carries the optional collection annotations
type CollectionMetadata struct {
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

type collectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
}

// Query posts the bare query text against a named collection. History is
// never sent; the RAG server builds its own context from retrieved
// documents.
func (c *Client) Query(ctx context.Context, query, collection string, topK int, includeSources bool) (*QueryResult, error) {
	body, err := json.Marshal(queryRequest{
		Query:          query,
		Collection:     collection,
		TopK:           topK,
		IncludeSources: includeSources,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &upstream.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &upstream.TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, upstream.ErrorFromResponse(resp.StatusCode, respBody)
	}

	var result QueryResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// ListCollections retrieves the collections the RAG server manages
func (c *Client) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &upstream.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &upstream.TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, upstream.ErrorFromResponse(resp.StatusCode, respBody)
	}

	var result collectionsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Collections, nil
}
