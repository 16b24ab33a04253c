package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetcherInterface is the contract the sync orchestrator depends on, so
// tests can substitute a stub without touching the network.
type FetcherInterface interface {
	Fetch(ctx context.Context, url string) (string, error)
}

var _ FetcherInterface = (*Fetcher)(nil)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

// Fetcher retrieves raw calendar text over HTTP. It holds no per-source
// state; caching decisions belong to the orchestrator.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Fetch issues a GET for the given URL and returns the response body.
// Transport-level failures and non-2xx statuses are returned as errors;
// the caller decides whether to fall back to cached text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}
