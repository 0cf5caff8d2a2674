package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/time/rate"

	"github.com/dnchinmayee/Text-retriving/internal/ingest"
	"github.com/dnchinmayee/Text-retriving/internal/logger"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Retryable reports whether the server may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type Options struct {
	Headers        map[string]string
	Timeout        time.Duration
	RatePerSecond  float64
	MaxAttempts    int
	InitialBackoff time.Duration
	Client         *http.Client
}

type Fetcher struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	cache   Cache
	log     *slog.Logger
	metrics *telemetry.Metrics
}

// New builds a Fetcher. cache and metrics may be nil.
func New(opts Options, cache Cache, log *slog.Logger, metrics *telemetry.Metrics) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Fetcher{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
		log:     logger.OrDiscard(log),
		metrics: metrics,
	}
}

// Fetch downloads url and extracts its text, consulting the cache first.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*ingest.Parsed, error) {
	if text, ok := f.cached(ctx, url); ok {
		f.metrics.CacheHit()
		return &ingest.Parsed{SourcePath: url, Text: text}, nil
	}

	f.log.Info("reading document", "url", url)
	started := time.Now()
	body, contentType, wire, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}
	f.metrics.Fetched(time.Since(started), wire)
	f.log.Debug("downloaded document", "url", url, "size", humanize.Bytes(uint64(wire)), "decoded", humanize.Bytes(uint64(len(body))))

	parsed, err := ingest.Parse(url, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	if f.cache != nil {
		if err := f.cache.Set(ctx, url, parsed.Text); err != nil {
			f.log.Warn("cache store failed", "url", url, "err", err)
		}
	}
	return parsed, nil
}

func (f *Fetcher) cached(ctx context.Context, url string) (string, bool) {
	if f.cache == nil {
		return "", false
	}
	text, ok, err := f.cache.Get(ctx, url)
	if err != nil {
		f.log.Warn("cache lookup failed", "url", url, "err", err)
		return "", false
	}
	return text, ok
}

type payload struct {
	body        []byte
	contentType string
	wire        int64
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, string, int64, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.opts.InitialBackoff

	attempt := 0
	p, err := backoff.Retry(ctx, func() (payload, error) {
		attempt++
		p, err := f.get(ctx, url)
		if err == nil {
			return p, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return payload{}, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return payload{}, backoff.Permanent(ctx.Err())
		}
		if attempt < f.opts.MaxAttempts {
			f.log.Warn("fetch failed, retrying", "url", url, "attempt", attempt, "err", err)
		}
		return payload{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(f.opts.MaxAttempts)))
	if err != nil {
		return nil, "", 0, err
	}
	return p.body, p.contentType, p.wire, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (payload, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return payload{}, fmt.Errorf("rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return payload{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	for k, v := range f.opts.Headers {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return payload{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return payload{}, &StatusError{URL: url, Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload{}, fmt.Errorf("read body %s: %w", url, err)
	}
	body, err := decode(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return payload{}, backoff.Permanent(fmt.Errorf("decode body %s: %w", url, err))
	}
	return payload{body: body, contentType: resp.Header.Get("Content-Type"), wire: int64(len(raw))}, nil
}

// decode undoes a Content-Encoding the transport left in place, which it
// does whenever Accept-Encoding was set explicitly.
func decode(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case "deflate":
		// Servers disagree on whether deflate is zlib-wrapped.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			out, err := io.ReadAll(zr)
			zr.Close()
			if err == nil {
				return out, nil
			}
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return io.ReadAll(fr)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}
