// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package midi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pianobot/pianobot/lib/netutil"
)

// DefaultMaxDownload bounds a download when the fetcher has no limit.
const DefaultMaxDownload int64 = 8 << 20

// HTTPError reports a download that the server answered with a non-2xx
// status.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("midi: GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Reply is the chat text for a failed download.
func (e *HTTPError) Reply() string {
	return fmt.Sprintf("**Error:** [Status Code: `%d`] - Failed to retrieve webpage: *%s*", e.StatusCode, e.URL)
}

// Fetcher downloads MIDI files.
type Fetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

// HTTPFetcher is a Fetcher over net/http.
type HTTPFetcher struct {
	// Client defaults to a client with Timeout.
	Client *http.Client

	// Timeout bounds the whole download when Client is nil.
	Timeout time.Duration

	// MaxBytes defaults to DefaultMaxDownload.
	MaxBytes int64
}

// Fetch GETs address and returns the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	if !IsURL(address) {
		return nil, fmt.Errorf("midi: %q is not an http(s) URL", address)
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: f.Timeout}
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxDownload
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("midi: building request: %w", err)
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("midi: GET %s: %w", address, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		netutil.Drain(response.Body, 64<<10)
		return nil, &HTTPError{URL: address, StatusCode: response.StatusCode}
	}
	data, err := netutil.ReadBounded(response.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("midi: GET %s: %w", address, err)
	}
	return data, nil
}

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
