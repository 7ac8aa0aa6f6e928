// Package tokenizer turns raw query strings into QueryTerms and splits entity
// fields into comparable words.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gcbaptista/go-browser-search/model"
)

// nonWordRegex matches sequences of characters that are neither letters nor digits.
var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// schemeRegex matches a URL scheme such as "https://" or "chrome-extension://".
var schemeRegex = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*://`)

// Normalize applies NFKC normalization and lowercases s, so that visually
// identical input compares equal ("Ｉｎｂｏｘ" and "inbox").
func Normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// NormalizeURL returns the comparable form of a URL: normalized, without the
// scheme and without a leading "www.".
func NormalizeURL(u string) string {
	normalized := Normalize(strings.TrimSpace(u))
	normalized = schemeRegex.ReplaceAllString(normalized, "")
	return strings.TrimPrefix(normalized, "www.")
}

// Tokenize splits text into normalized words on any run of non letter/digit characters.
func Tokenize(text string) []string {
	split := nonWordRegex.Split(Normalize(text), -1)

	tokens := make([]string, 0, len(split))
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// ParseQuery splits a raw query on whitespace into QueryTerms.
// A "#" prefix makes a tag term and a "~" prefix a folder term; the stripped
// form goes into Terms and the marked form into TagTerms or FolderTerms.
// Terms shorter than minMatchCharLength runes (after stripping) are dropped,
// but the raw query is always kept.
func ParseQuery(raw string, minMatchCharLength int) model.QueryTerms {
	if minMatchCharLength < 1 {
		minMatchCharLength = 1
	}

	query := model.QueryTerms{
		RawQuery: raw,
		Terms:    make([]string, 0),
	}

	for _, word := range strings.Fields(raw) {
		term := Normalize(word)

		marker := ""
		switch {
		case strings.HasPrefix(term, model.TagMarker):
			marker = model.TagMarker
		case strings.HasPrefix(term, model.FolderMarker):
			marker = model.FolderMarker
		}

		stripped := strings.TrimPrefix(term, marker)
		if utf8.RuneCountInString(stripped) < minMatchCharLength {
			continue
		}

		query.Terms = append(query.Terms, stripped)
		switch marker {
		case model.TagMarker:
			query.TagTerms = append(query.TagTerms, term)
		case model.FolderMarker:
			query.FolderTerms = append(query.FolderTerms, term)
		}
	}

	return query
}
