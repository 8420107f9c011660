// Package bypass classifies fetched result pages that the search engine
// served in place of actual results: consent interstitials, captcha walls,
// and rate-limit blocks. Detection is advisory; callers decide whether a
// blocked page is an error or just an empty page.
package bypass

import (
	"bytes"
	"net/http"
)

// Detector examines a response and reports whether it is a block page and
// which mechanism produced it.
type Detector func(statusCode int, body []byte) (detected bool, source string)

// DefaultDetectors returns the standard detector chain, ordered from most to
// least specific.
func DefaultDetectors() []Detector {
	return []Detector{
		detectConsent,
		detectCaptcha,
		detectRateLimit,
	}
}

// Analyze runs the response through the detectors and returns the first hit.
func Analyze(statusCode int, body []byte, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(statusCode, body); detected {
			return true, source
		}
	}
	return false, ""
}

// detectConsent recognizes the regulatory consent interstitial. It is served
// with a 200 status, so result-count heuristics alone cannot distinguish it
// from a genuinely empty result page.
func detectConsent(statusCode int, body []byte) (bool, string) {
	if statusCode != http.StatusOK && statusCode != http.StatusFound {
		return false, ""
	}
	if bytes.Contains(body, []byte("consent.google.com")) ||
		bytes.Contains(body, []byte("Before you continue")) ||
		bytes.Contains(body, []byte("action=\"https://consent.")) {
		return true, "Consent"
	}
	return false, ""
}

// detectCaptcha recognizes the "unusual traffic" sorry page.
func detectCaptcha(statusCode int, body []byte) (bool, string) {
	if statusCode != http.StatusTooManyRequests && statusCode != http.StatusServiceUnavailable && statusCode != http.StatusOK {
		return false, ""
	}
	if bytes.Contains(body, []byte("/sorry/index")) ||
		bytes.Contains(body, []byte("unusual traffic from your computer network")) ||
		bytes.Contains(body, []byte("g-recaptcha")) {
		return true, "Captcha"
	}
	return false, ""
}

// detectRateLimit catches bare 429 responses with no recognizable body.
func detectRateLimit(statusCode int, body []byte) (bool, string) {
	if statusCode == http.StatusTooManyRequests {
		return true, "RateLimit"
	}
	return false, ""
}
