package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// FetchError classifies a failed retrieval. Transient failures (network
// errors, 429, 5xx) are retried with backoff; permanent ones propagate
// to the caller immediately.
type FetchError struct {
	URL       string
	Status    int // 0 when the request never got a response
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Identity is one outbound header set. Rotating identities per call keeps
// the crawler from presenting a single fingerprint.
type Identity struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

var defaultIdentities = []Identity{
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.5",
	},
	{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
	},
}

const maxBodyBytes = 4 << 20 // career pages fitting in 4 MiB is generous

// Fetcher performs polite HTTP GETs: per-host rate limiting, identity
// rotation, and bounded exponential-backoff retries on transient failures.
// All mutable crawl state lives here, not in globals, so tests can inject
// deterministic identities and timers.
type Fetcher struct {
	hc          *http.Client
	limiter     *HostLimiter
	identities  []Identity
	maxAttempts int
	next        atomic.Uint64 // identity rotation cursor

	// sleep is swappable in tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	Limiter     *HostLimiter
	Identities  []Identity // defaults to the built-in pool
}

func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Limiter == nil {
		opts.Limiter = NewHostLimiter(0.5, 1)
	}
	ids := opts.Identities
	if len(ids) == 0 {
		ids = defaultIdentities
	}
	return &Fetcher{
		hc:          &http.Client{Timeout: opts.Timeout},
		limiter:     opts.Limiter,
		identities:  ids,
		maxAttempts: opts.MaxAttempts,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Get retrieves url, retrying transient failures up to the attempt bound.
// The returned body is fully read and capped at maxBodyBytes.
func (f *Fetcher) Get(ctx context.Context, url string) (status int, body []byte, err error) {
	backoff := 500 * time.Millisecond

	for attempt := 1; ; attempt++ {
		status, body, err = f.getOnce(ctx, url)
		if err == nil {
			return status, body, nil
		}

		var fe *FetchError
		if !errors.As(err, &fe) || !fe.Transient || attempt >= f.maxAttempts {
			return 0, nil, err
		}
		if serr := f.sleep(ctx, backoff); serr != nil {
			return 0, nil, &FetchError{URL: url, Transient: true, Err: serr}
		}
		backoff *= 2
	}
}

func (f *Fetcher) getOnce(ctx context.Context, url string) (int, []byte, error) {
	if err := f.limiter.WaitURL(ctx, url); err != nil {
		return 0, nil, &FetchError{URL: url, Transient: true, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, &FetchError{URL: url, Err: err}
	}
	id := f.identities[f.next.Add(1)%uint64(len(f.identities))]
	req.Header.Set("User-Agent", id.UserAgent)
	req.Header.Set("Accept", id.Accept)
	req.Header.Set("Accept-Language", id.AcceptLanguage)

	res, err := f.hc.Do(req)
	if err != nil {
		return 0, nil, &FetchError{URL: url, Transient: true, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
		return 0, nil, &FetchError{URL: url, Status: res.StatusCode, Transient: true}
	}
	if res.StatusCode >= 400 {
		return 0, nil, &FetchError{URL: url, Status: res.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, &FetchError{URL: url, Transient: true, Err: err}
	}
	return res.StatusCode, b, nil
}
