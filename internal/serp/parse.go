package serp

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors matching the structural markers of the legacy result markup.
// These are an external contract the engine does not document; if the remote
// markup changes, parsing silently yields nothing.
const (
	resultContainerSelector = "div.ezO2md"
	titleSelector           = "span.CVA68e"
	descriptionSelector     = "span.FrIlee"
)

// parseResults extracts the results from one page in document order. Missing
// sub-elements become empty fields; an unparsable document yields nothing.
// De-duplication is the search loop's concern, not the parser's.
func parseResults(body []byte) []Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var results []Result
	doc.Find(resultContainerSelector).Each(func(_ int, container *goquery.Selection) {
		var r Result

		anchor := container.Find("a[href]").First()
		if anchor.Length() > 0 {
			if href, ok := anchor.Attr("href"); ok {
				r.URL = cleanResultURL(href)
			}
			r.Title = anchor.Find(titleSelector).First().Text()
		}

		r.Description = container.Find(descriptionSelector).First().Text()

		results = append(results, r)
	})

	return results
}

// cleanResultURL recovers the target URL from the engine's redirect-wrapped
// href: drop everything after the first '&', strip the /url?q= wrapper, and
// percent-decode the remainder. Percent-decoding only; a literal '+' in the
// target URL stays a '+'.
func cleanResultURL(href string) string {
	href, _, _ = strings.Cut(href, "&")
	href = strings.TrimPrefix(href, "/url?q=")
	decoded, err := url.PathUnescape(href)
	if err != nil {
		return href
	}
	return decoded
}
