package serp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/FranksOps/quarry/internal/bypass"
	"github.com/FranksOps/quarry/internal/fingerprint"
	"github.com/FranksOps/quarry/internal/metrics"
	"github.com/FranksOps/quarry/pkg/httpclient"
	"github.com/FranksOps/quarry/pkg/proxy"
	"github.com/FranksOps/quarry/pkg/useragent"
)

const defaultEndpoint = "https://www.google.com/search"

// Fixed cookies that suppress the consent interstitial which would otherwise
// replace results with an HTML consent form.
const (
	consentCookie = "PENDING+987"
	socsCookie    = "CAESHAgBEhIaAB"
)

// pageStep is how far the result offset advances per page.
const pageStep = 10

type contextKey string

const proxyKey contextKey = "proxy_url"

// Config configures a Google provider. The zero value works; defaults are
// filled in NewGoogle.
type Config struct {
	// BaseURL is the search endpoint. Overridable for tests.
	BaseURL string
	// UserAgents supplies the client identity per request.
	UserAgents *useragent.Pool
	// Proxies optionally rotates a proxy per page fetch with health
	// tracking. An Options.Proxy on the search call takes precedence.
	Proxies *proxy.Pool
	// Fingerprint selects the TLS ClientHello presented to the endpoint.
	Fingerprint fingerprint.Profile
	// Padding is how many extra results each page request asks for beyond
	// what is still wanted; the surplus absorbs near-duplicate or malformed
	// entries on the remote side. Default 2, negative for none.
	Padding int
	Logger  *slog.Logger
}

// Google scrapes Google's HTML result pages.
type Google struct {
	cfg Config
}

var _ Provider = (*Google)(nil)

// NewGoogle creates a provider with defaults applied.
func NewGoogle(cfg Config) *Google {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultEndpoint
	}
	if cfg.UserAgents == nil {
		cfg.UserAgents = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Padding == 0 {
		cfg.Padding = 2
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Google{cfg: cfg}
}

// newClient builds the HTTP client for one search call. The proxy function
// reads a per-request proxy from the context so the pool can rotate across
// page fetches without rebuilding the transport.
func (g *Google) newClient(o Options) (*httpclient.Client, error) {
	fixed, err := proxy.Sanitize(o.Proxy)
	if err != nil {
		return nil, err
	}

	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if fixed != nil {
			return fixed, nil
		}
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		return nil, nil
	}

	insecure := o.TLSVerify != nil && !*o.TLSVerify

	transport, err := fingerprint.Transport(g.cfg.Fingerprint, fingerprint.Options{
		Proxy:              proxyFunc,
		InsecureSkipVerify: insecure,
	})
	if err != nil {
		return nil, err
	}

	return httpclient.New(httpclient.Config{
		Timeout:      o.Timeout,
		MaxRedirects: 5,
		Transport:    transport,
	}), nil
}

// fetchPage issues one GET for a result page and returns the raw body.
// Non-2xx statuses become *StatusError, connection failures *TransportError;
// neither is retried here.
func (g *Google) fetchPage(ctx context.Context, client *httpclient.Client, query string, wanted, offset int, o Options, dateFilter string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(wanted+g.cfg.Padding))
	params.Set("hl", o.Lang)
	params.Set("start", strconv.Itoa(offset))
	params.Set("safe", o.Safe)
	if o.Region != "" {
		params.Set("gl", o.Region)
	}
	if dateFilter != "" {
		params.Set("tbs", dateFilter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req.Header.Set("User-Agent", g.cfg.UserAgents.Random())
	req.Header.Set("Accept", "*/*")
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: consentCookie})
	req.AddCookie(&http.Cookie{Name: "SOCS", Value: socsCookie})

	// Per-page proxy rotation, unless the caller pinned one.
	var activeProxy *url.URL
	if o.Proxy == "" && g.cfg.Proxies != nil {
		if activeProxy = g.cfg.Proxies.Next(); activeProxy != nil {
			req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
		}
	}

	start := time.Now()

	resp, err := client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = g.cfg.Proxies.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		metrics.RecordPage(-1, false, "", time.Since(start), 0)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = g.cfg.Proxies.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordPage(resp.StatusCode, false, "", time.Since(start), 0)
		return nil, &TransportError{Err: err}
	}

	blocked, blockSource := bypass.Analyze(resp.StatusCode, body, bypass.DefaultDetectors())
	metrics.RecordPage(resp.StatusCode, blocked, blockSource, time.Since(start), len(body))
	if blocked {
		g.cfg.Logger.Warn("result page looks blocked", "source", blockSource, "status", resp.StatusCode, "offset", offset)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return body, nil
}
