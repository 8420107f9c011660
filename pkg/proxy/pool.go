// Package proxy manages outbound proxy selection: a rotating pool with
// failure tracking, plus validation of single caller-supplied proxy URLs.
package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Sanitize parses a caller-supplied proxy string. Only values beginning with
// "http" or "https" name a usable proxy; anything else (including the empty
// string) means no proxy and returns nil without error. A malformed URL with
// a usable prefix is an error.
func Sanitize(raw string) (*url.URL, error) {
	if !strings.HasPrefix(raw, "http") {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	return u, nil
}

// entry is a pool member with health bookkeeping.
type entry struct {
	url           *url.URL
	failures      int
	successes     int
	lastUsed      time.Time
	disabled      bool
	disabledUntil time.Time
}

// Pool rotates over a set of proxies, temporarily benching ones that keep
// failing.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	next        int
	maxFailures int
	cooldown    time.Duration
}

// Config defines pool health thresholds.
type Config struct {
	// MaxFailures before a proxy is benched.
	MaxFailures int
	// Cooldown is how long a benched proxy stays out of rotation.
	Cooldown time.Duration
}

// NewPool creates an empty pool. Zero config values get defaults.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{maxFailures: cfg.MaxFailures, cooldown: cfg.Cooldown}
}

// Add parses raw URLs and appends them to the rotation. A missing scheme
// defaults to http.
func (p *Pool) Add(rawURLs ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, raw := range rawURLs {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("add proxy %q: %w", raw, err)
		}
		p.entries = append(p.entries, &entry{url: u})
	}
	return nil
}

// LoadFile reads one proxy URL per line. Blank lines and '#' comments are
// skipped.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read proxy file: %w", err)
	}

	return p.Add(urls...)
}

// Next returns the next healthy proxy, or nil if the pool is empty or every
// proxy is cooling down. Benched proxies whose cooldown has elapsed rejoin
// the rotation with their failure count reset.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return nil
	}

	now := time.Now()
	start := p.next

	for {
		e := p.entries[p.next]
		p.next = (p.next + 1) % len(p.entries)

		if e.disabled && now.After(e.disabledUntil) {
			e.disabled = false
			e.failures = 0
		}

		if !e.disabled {
			e.lastUsed = now
			return e.url
		}

		if p.next == start {
			return nil
		}
	}
}

// MarkSuccess records a successful request through the given proxy.
func (p *Pool) MarkSuccess(proxyURL *url.URL) error {
	e, unlock, err := p.lookup(proxyURL)
	if err != nil {
		return err
	}
	defer unlock()

	e.successes++
	if e.failures > 0 {
		e.failures--
	}
	return nil
}

// MarkFailure records a failed request through the given proxy. Hitting the
// failure threshold benches the proxy for the configured cooldown.
func (p *Pool) MarkFailure(proxyURL *url.URL) error {
	e, unlock, err := p.lookup(proxyURL)
	if err != nil {
		return err
	}
	defer unlock()

	e.failures++
	if e.failures >= p.maxFailures {
		e.disabled = true
		e.disabledUntil = time.Now().Add(p.cooldown)
	}
	return nil
}

func (p *Pool) lookup(u *url.URL) (*entry, func(), error) {
	if u == nil {
		return nil, nil, errors.New("proxy url cannot be nil")
	}

	p.mu.Lock()
	target := u.String()
	for _, e := range p.entries {
		if e.url.String() == target {
			return e, p.mu.Unlock, nil
		}
	}
	p.mu.Unlock()
	return nil, nil, fmt.Errorf("proxy %s not found in pool", target)
}
