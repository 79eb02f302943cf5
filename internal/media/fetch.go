package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// Fetcher downloads remote media referenced from card text. Downloads are
// retried with exponential backoff; client errors other than 429 fail
// immediately.
type Fetcher struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

func NewFetcher(retryAttempts uint) *Fetcher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Fetcher{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (f *Fetcher) Close() error {
	return f.httpClient.Close()
}

// isRetryableError determines if a download error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// Fetch downloads a URL and returns its body bytes.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var result []byte
	if err := retry.Do(
		func() error {
			body, err := f.fetch(ctx, url)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	response, err := f.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(%s) > %w", url, err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), url)
	}
	return response.Bytes(), nil
}
