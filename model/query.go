package model

import "strings"

const (
	// TagMarker prefixes a query term that should only match tags.
	TagMarker = "#"
	// FolderMarker prefixes a query term that should only match folder names.
	FolderMarker = "~"
)

// QueryTerms is the tokenized form of a single search invocation.
// Terms holds every matchable term with markers stripped; TagTerms and
// FolderTerms keep their marker ("#work", "~dev") for exact bonus detection.
type QueryTerms struct {
	RawQuery    string   `json:"rawQuery"`
	Terms       []string `json:"terms"`
	TagTerms    []string `json:"tagTerms,omitempty"`
	FolderTerms []string `json:"folderTerms,omitempty"`
}

// Active reports whether a search is in progress. A blank query shows the
// default view instead of an empty result list.
func (q QueryTerms) Active() bool {
	return strings.TrimSpace(q.RawQuery) != ""
}

// IsTagOrFolderOnly reports whether every term is a tag or folder term.
// Such searches are not capped by search.maxResults.
func (q QueryTerms) IsTagOrFolderOnly() bool {
	if len(q.Terms) == 0 {
		return false
	}
	return len(q.TagTerms)+len(q.FolderTerms) == len(q.Terms)
}

// ScopedTerm is a stripped term together with the fields it may match.
type ScopedTerm struct {
	Term   string
	Fields []Field
}

// ScopedTerms pairs each term with the fields it may match. Tag terms only
// match tags and folder terms only match folder names; plain terms match all.
func (q QueryTerms) ScopedTerms() []ScopedTerm {
	tags := make(map[string]int, len(q.TagTerms))
	for _, t := range q.TagTerms {
		tags[strings.TrimPrefix(t, TagMarker)]++
	}
	folders := make(map[string]int, len(q.FolderTerms))
	for _, f := range q.FolderTerms {
		folders[strings.TrimPrefix(f, FolderMarker)]++
	}

	scoped := make([]ScopedTerm, 0, len(q.Terms))
	for _, term := range q.Terms {
		switch {
		case tags[term] > 0:
			tags[term]--
			scoped = append(scoped, ScopedTerm{Term: term, Fields: []Field{FieldTag}})
		case folders[term] > 0:
			folders[term]--
			scoped = append(scoped, ScopedTerm{Term: term, Fields: []Field{FieldFolder}})
		default:
			scoped = append(scoped, ScopedTerm{Term: term, Fields: Fields})
		}
	}
	return scoped
}
