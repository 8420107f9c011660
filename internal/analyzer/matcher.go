// Package analyzer scans search results for caller-supplied terms, so a run
// over many queries can report which hits actually mention the topics of
// interest.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/FranksOps/quarry/internal/serp"
)

// TermMatch reports occurrences of one term within one result's text.
type TermMatch struct {
	Term     string   `json:"term"`
	URL      string   `json:"url"`
	Count    int      `json:"count"`
	Snippets []string `json:"snippets"`
}

// MatchTerms scans each result's title and description for each term,
// case-insensitively, and returns one match per (term, result) pair with at
// least one occurrence. Snippets are the description sentences containing
// the term.
func MatchTerms(results []serp.Result, terms []string) []TermMatch {
	if len(results) == 0 || len(terms) == 0 {
		return nil
	}

	lowerTerms := make([]string, len(terms))
	for i, term := range terms {
		lowerTerms[i] = strings.ToLower(term)
	}

	var matches []TermMatch
	for _, r := range results {
		text := r.Title + ". " + r.Description
		lowerText := strings.ToLower(text)

		var sentences []sentence
		for i, term := range terms {
			count := strings.Count(lowerText, lowerTerms[i])
			if count == 0 {
				continue
			}

			// Split lazily; most results match nothing.
			if sentences == nil {
				sentences = splitSentences(r.Description)
			}

			var snippets []string
			for _, s := range sentences {
				if strings.Contains(s.lower, lowerTerms[i]) {
					snippets = append(snippets, s.original)
				}
			}

			matches = append(matches, TermMatch{
				Term:     term,
				URL:      r.URL,
				Count:    count,
				Snippets: snippets,
			})
		}
	}

	return matches
}

// sentence keeps the original and lowercase forms together so each split is
// lowercased once.
type sentence struct {
	original string
	lower    string
}

// splitSentences naively splits on '.', '!' and '?', keeping the delimiter.
// The punctuation only ends a sentence when followed by whitespace or the end
// of the text, so decimals like "1.23" stay intact.
func splitSentences(text string) []sentence {
	if len(text) == 0 {
		return nil
	}

	var sentences []sentence
	start := 0

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(text) && !unicode.IsSpace(rune(text[i+1])) {
			continue
		}
		end := i + 1
		for end < len(text) && unicode.IsSpace(rune(text[end])) {
			end++
		}
		orig := strings.TrimSpace(text[start:end])
		if orig != "" {
			sentences = append(sentences, sentence{original: orig, lower: strings.ToLower(orig)})
		}
		start = end
	}

	if start < len(text) {
		orig := strings.TrimSpace(text[start:])
		if orig != "" {
			sentences = append(sentences, sentence{original: orig, lower: strings.ToLower(orig)})
		}
	}

	return sentences
}
