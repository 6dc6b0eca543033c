package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrEmptyURL         = errors.New("url is required")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// HTTPFetcher downloads feed documents and images over HTTP(S).
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	to := opts.Timeout
	if to <= 0 {
		to = 60 * time.Second
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "go-feed-catalog/1.0"
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: to},
		userAgent: ua,
	}
}

// Fetch returns the response body of a successful GET. The caller closes
// it. Any non-2xx answer is an error carrying the status text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrEmptyURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return resp.Body, nil
}
