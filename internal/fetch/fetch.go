// Package fetch implements the conditional-GET HTTP client the engine
// uses to pull upstream llms.txt sources: validator-aware requests,
// streaming size/time bounds, gzip/deflate decompression, and a SHA-256
// digest of the UTF-8-normalized text.
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/blz-dev/blz/internal/config"
	"github.com/blz-dev/blz/internal/ferr"
)

// Result is the outcome of a successful, non-304 fetch.
type Result struct {
	Bytes         []byte
	SHA256        string
	ETag          string
	LastModified  string
	ContentType   string
	FinalURL      string
	ReplacedRunes int // count of invalid UTF-8 sequences replaced
}

// Validators carries the conditional-GET inputs from a source's prior
// fetch.
type Validators struct {
	ETag         string
	LastModified string
}

// CircuitBreaker is the subset of ferr.CircuitBreaker the Fetcher
// consults, so callers can pass nil to skip circuit-breaking entirely.
type CircuitBreaker interface {
	Allow() bool
	RecordSuccess()
	RecordFailure()
}

// Fetcher performs bounded, conditional HTTP GETs.
type Fetcher struct {
	client *http.Client
}

// New builds a Fetcher. Each attempt is additionally bounded by
// Limits.MaxDuration through its context; the supplied http.Client's
// own Timeout, if any, still applies.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client}
}

// maxRetries bounds how many times Fetch retries a retryable failure
// before surfacing it, per spec §7's "bounded number of attempts".
const maxRetries = 4

// Fetch performs a conditional GET against url, retrying network and
// 429/5xx failures with exponential backoff and jitter, and consulting
// cb (if non-nil) before each attempt. It returns (nil, nil) to signal
// NotModified.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, v Validators, limits config.Limits, cb CircuitBreaker) (*Result, error) {
	if err := validateScheme(rawURL, limits.AllowedSchemes); err != nil {
		return nil, err
	}

	var result *Result
	notModified := false

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)

	op := func() error {
		if cb != nil && !cb.Allow() {
			return backoff.Permanent(ferr.Conflict("circuit open"))
		}

		r, nm, err := f.attempt(ctx, rawURL, v, limits)
		if err != nil {
			if cb != nil {
				cb.RecordFailure()
			}
			if ferr.IsRetryable(err) {
				return err // retry
			}
			return backoff.Permanent(err)
		}
		if cb != nil {
			cb.RecordSuccess()
		}
		result, notModified = r, nm
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Unwrap()
		}
		return nil, err
	}

	if notModified {
		return nil, nil
	}
	return result, nil
}

func validateScheme(rawURL string, allowed []config.AllowedScheme) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ferr.Validation(ferr.ErrCodeInvalidURL, "malformed URL", err)
	}
	for _, s := range allowed {
		if strings.EqualFold(u.Scheme, string(s)) {
			return nil
		}
	}
	return ferr.Validation(ferr.ErrCodeSchemeDenied, "scheme not permitted: "+u.Scheme, nil)
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string, v Validators, limits config.Limits) (*Result, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, limits.MaxDuration)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, ferr.Validation(ferr.ErrCodeInvalidURL, "malformed request", err)
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ferr.Timeout(err)
		}
		return nil, false, ferr.Network("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, ferr.HTTPStatus(resp.StatusCode, nil)
	}

	body, err := decompress(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, false, ferr.Network("decompression failed", err)
	}

	limited := io.LimitReader(body, limits.MaxBytes+1)
	hasher := sha256.New()
	data, err := io.ReadAll(io.TeeReader(limited, hasher))
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ferr.Timeout(err)
		}
		return nil, false, ferr.Network("read failed", err)
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, false, ferr.TooLarge(limits.MaxBytes)
	}

	text, replaced := normalizeUTF8(data)
	sum := sha256.Sum256([]byte(text))

	return &Result{
		Bytes:         []byte(text),
		SHA256:        hex.EncodeToString(sum[:]),
		ETag:          resp.Header.Get("ETag"),
		LastModified:  resp.Header.Get("Last-Modified"),
		ContentType:   resp.Header.Get("Content-Type"),
		FinalURL:      resp.Request.URL.String(),
		ReplacedRunes: replaced,
	}, false, nil
}

func decompress(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(body)
	case "deflate":
		return flate.NewReader(body), nil
	default:
		return body, nil
	}
}

// normalizeUTF8 replaces invalid UTF-8 sequences with the Unicode
// replacement character and reports how many were replaced.
func normalizeUTF8(data []byte) (string, int) {
	if utf8.Valid(data) {
		return string(data), 0
	}

	var b strings.Builder
	b.Grow(len(data))
	replaced := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
			replaced++
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String(), replaced
}

