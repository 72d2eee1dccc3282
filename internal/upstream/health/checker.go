// Package health probes the upstream inference services.
package health

import (
	"context"
	"net"
	"net/http"
	"time"
)

// ServiceStatus is the outcome of one probe
type ServiceStatus struct {
	Status   string `json:"status"`
	HTTPCode int    `json:"http_code,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Checker probes each configured endpoint independently. Probes use short
// timeouts and a failing probe never aborts the others. The embed service
// is optional: when it errors it is omitted from the result entirely.
type Checker struct {
	llmURL   string
	ragURL   string
	embedURL string
	client   *http.Client
}

// NewChecker creates a checker for the given base URLs. The RAG server
// has no dedicated health endpoint; its collections listing doubles as a
// liveness probe.
func NewChecker(llmURL, ragURL, embedURL string) *Checker {
	return &Checker{
		llmURL:   llmURL,
		ragURL:   ragURL,
		embedURL: embedURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 3 * time.Second}).DialContext,
			},
		},
	}
}

// Check probes all services and returns a status per service name
func (c *Checker) Check(ctx context.Context) map[string]ServiceStatus {
	results := map[string]ServiceStatus{
		"llm": c.probe(ctx, c.llmURL+"/health"),
		"rag": c.probe(ctx, c.ragURL+"/collections"),
	}

	if c.embedURL != "" {
		if embed := c.probe(ctx, c.embedURL+"/health"); embed.Status != StatusError {
			results["embed"] = embed
		}
	}

	return results
}

func (c *Checker) probe(ctx context.Context, url string) ServiceStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServiceStatus{Status: StatusError}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ServiceStatus{Status: StatusError}
	}
	defer resp.Body.Close()

	status := StatusError
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		status = StatusOK
	}

	return ServiceStatus{Status: status, HTTPCode: resp.StatusCode}
}
