package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"with numbers", "item123 test", []string{"item123", "test"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"all caps word", "HELLO WORLD", []string{"hello", "world"}},
		{"string with hyphen", "state-of-the-art", []string{"state", "of", "the", "art"}},
		{"url", "https://github.com/golang/go", []string{"https", "github", "com", "golang", "go"}},
		{"accented letters", "Café Müller", []string{"café", "müller"}},
		{"fullwidth letters", "Ｉｎｂｏｘ", []string{"inbox"}},
		{"only symbols", "!@#$%^", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.GitHub.com/Go", "github.com/go"},
		{"http://example.org", "example.org"},
		{"chrome-extension://abc/popup.html", "abc/popup.html"},
		{"www.example.com", "example.com"},
		{"  mail.google.com  ", "mail.google.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.input); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		minLen      int
		terms       []string
		tagTerms    []string
		folderTerms []string
	}{
		{
			name:   "plain terms are lowercased",
			raw:    "Go Docs",
			minLen: 2,
			terms:  []string{"go", "docs"},
		},
		{
			name:     "tag term",
			raw:      "#Work",
			minLen:   2,
			terms:    []string{"work"},
			tagTerms: []string{"#work"},
		},
		{
			name:        "folder and plain terms",
			raw:         "~dev  golang",
			minLen:      2,
			terms:       []string{"dev", "golang"},
			folderTerms: []string{"~dev"},
		},
		{
			name:   "short terms are dropped",
			raw:    "a go b",
			minLen: 2,
			terms:  []string{"go"},
		},
		{
			name:   "length counts runes after stripping the marker",
			raw:    "#x ~é ün",
			minLen: 2,
			terms:  []string{"ün"},
		},
		{
			name:   "bare markers are dropped",
			raw:    "# ~",
			minLen: 1,
			terms:  []string{},
		},
		{
			name:   "whitespace only",
			raw:    "   \t ",
			minLen: 2,
			terms:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.raw, tt.minLen)
			if got.RawQuery != tt.raw {
				t.Errorf("RawQuery = %q, want %q", got.RawQuery, tt.raw)
			}
			if !reflect.DeepEqual(got.Terms, tt.terms) {
				t.Errorf("Terms = %v, want %v", got.Terms, tt.terms)
			}
			if !reflect.DeepEqual(got.TagTerms, tt.tagTerms) {
				t.Errorf("TagTerms = %v, want %v", got.TagTerms, tt.tagTerms)
			}
			if !reflect.DeepEqual(got.FolderTerms, tt.folderTerms) {
				t.Errorf("FolderTerms = %v, want %v", got.FolderTerms, tt.folderTerms)
			}
		})
	}
}

func TestParseQuery_Activity(t *testing.T) {
	if ParseQuery("", 2).Active() {
		t.Error("empty query must not be active")
	}
	if ParseQuery("  ", 2).Active() {
		t.Error("whitespace query must not be active")
	}

	// Too-short terms leave an active search with no matchable terms
	q := ParseQuery("a", 2)
	if !q.Active() {
		t.Error("non-blank query must be active")
	}
	if len(q.Terms) != 0 {
		t.Errorf("expected no terms, got %v", q.Terms)
	}
}

func TestParseQuery_TagOrFolderOnly(t *testing.T) {
	if !ParseQuery("#work ~dev", 2).IsTagOrFolderOnly() {
		t.Error("expected tag/folder-only query")
	}
	if ParseQuery("#work golang", 2).IsTagOrFolderOnly() {
		t.Error("mixed query is not tag/folder-only")
	}
}
