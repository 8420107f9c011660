// Package httpclient wraps net/http with the timeout, redirect, and
// transport configuration the page fetcher needs.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Config defines the client setup.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	// Transport injects proxying and TLS fingerprinting. Nil uses the default.
	Transport http.RoundTripper
}

// Client is a configured *http.Client.
type Client struct {
	*http.Client
}

// New builds a client from the configuration. A zero timeout defaults to
// 30 seconds. A negative MaxRedirects disables redirect following entirely.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &http.Client{Timeout: cfg.Timeout}

	if cfg.MaxRedirects >= 0 {
		limit := cfg.MaxRedirects
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	} else {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if cfg.Transport != nil {
		c.Transport = cfg.Transport
	}

	return &Client{Client: c}
}

// Do executes the request bound to ctx, which controls cancellation
// independently of the client-level timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}

	resp, err := c.Client.Do(req.Clone(ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}
