package match

import (
	"fmt"
	"log"
	"strings"

	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
)

// fieldText holds the comparable form of one field of an entity.
type fieldText struct {
	values []string // whole values, normalized
	words  []string // words of all values
}

// entityText is the comparable form of an entity, per field.
type entityText map[model.Field]fieldText

func newEntityText(e model.SearchableEntity) entityText {
	text := make(entityText, len(model.Fields))
	text[model.FieldTitle] = newFieldText([]string{tokenizer.Normalize(strings.TrimSpace(e.Title))})
	text[model.FieldURL] = newFieldText([]string{tokenizer.NormalizeURL(e.URL)})

	tags := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		tags = append(tags, tokenizer.Normalize(tag))
	}
	text[model.FieldTag] = newFieldText(tags)

	folders := make([]string, 0, len(e.FolderPath))
	for _, folder := range e.FolderPath {
		folders = append(folders, tokenizer.Normalize(folder))
	}
	text[model.FieldFolder] = newFieldText(folders)
	return text
}

func newFieldText(values []string) fieldText {
	ft := fieldText{values: make([]string, 0, len(values))}
	for _, v := range values {
		if v == "" {
			continue
		}
		ft.values = append(ft.values, v)
		ft.words = append(ft.words, tokenizer.Tokenize(v)...)
	}
	return ft
}

// exactKind returns the strongest exact match kind of term within the field,
// or "" when the term does not occur. A whole value or a single word equal to
// the term is exactEquals; a value or word starting with it is startsWith.
func (ft fieldText) exactKind(term string) model.MatchKind {
	best := model.MatchKind("")
	upgrade := func(k model.MatchKind) {
		if k.Strength() > best.Strength() {
			best = k
		}
	}

	for _, v := range ft.values {
		switch {
		case v == term:
			return model.MatchExactEquals
		case strings.HasPrefix(v, term):
			upgrade(model.MatchStartsWith)
		case strings.Contains(v, term):
			upgrade(model.MatchSubstring)
		}
	}
	for _, w := range ft.words {
		switch {
		case w == term:
			return model.MatchExactEquals
		case strings.HasPrefix(w, term):
			upgrade(model.MatchStartsWith)
		}
	}
	return best
}

// evaluateSafely runs fn for one entity and turns a panic into "no match".
func evaluateSafely(approach string, e model.SearchableEntity, fn func() (model.Candidate, bool)) (candidate model.Candidate, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: %s matcher failed on entity %s, treating it as no match: %v", approach, e.ID, fmt.Sprint(r))
			candidate, ok = model.Candidate{}, false
		}
	}()
	return fn()
}
