package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"PhrasebankScanner/internal/domain"
)

const defaultUserAgent = "PhrasebankScanner/1.0"

// FetchOptions tunes politeness and resilience of page retrieval.
type FetchOptions struct {
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
	Delay     time.Duration
	UserAgent string
}

// Fetcher downloads and parses section pages one at a time.
type Fetcher struct {
	client    *http.Client
	userAgent string
	retries   uint64
	backoff   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewFetcher wires an HTTP client; a nil client gets one with opts.Timeout
// (15s when unset).
func NewFetcher(client *http.Client, opts FetchOptions, log *slog.Logger) *Fetcher {
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	retries := uint64(0)
	if opts.Retries > 0 {
		retries = uint64(opts.Retries)
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Fetcher{
		client:    client,
		userAgent: ua,
		retries:   retries,
		backoff:   backoff,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    log,
	}
}

// statusError carries a non-200 response status.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.status)
}

func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// Fetch waits for the politeness limiter, then retrieves and parses pageURL,
// retrying network errors, 429 and 5xx responses with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: wait for rate limiter: %w", domain.ErrFetch, err)
	}

	var doc *goquery.Document
	attempt := 0
	backoff := retry.WithMaxRetries(f.retries, retry.NewExponential(f.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var fetchErr error
		doc, fetchErr = f.fetchDocument(ctx, pageURL)
		if fetchErr == nil {
			return nil
		}

		var se *statusError
		if errors.As(fetchErr, &se) && !se.transient() {
			return fetchErr
		}
		if ctx.Err() != nil {
			return fetchErr
		}
		f.debug("retry fetch", "url", pageURL, "attempt", attempt, "error", fetchErr)
		return retry.RetryableError(fetchErr)
	})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", domain.ErrFetch, pageURL, err)
	}

	return doc, nil
}

func (f *Fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
