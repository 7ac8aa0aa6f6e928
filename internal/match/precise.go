package match

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/gcbaptista/go-browser-search/config"
	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
)

const (
	textAnalyzer    = "browser_text"
	keywordAnalyzer = "browser_keyword"
)

// indexFields maps entity fields to the bleve document fields they are indexed in.
var indexFields = map[model.Field]string{
	model.FieldTitle:  "title",
	model.FieldURL:    "url",
	model.FieldTag:    "tags",
	model.FieldFolder: "folders",
}

// PreciseMatcher matches whole tokens by prefix using an in-memory bleve index.
// Fuzziness is ignored. An entity is a candidate only when the share of query
// terms it matches reaches the configured ratio.
type PreciseMatcher struct {
	ratio float64

	mu      sync.RWMutex
	index   bleve.Index
	indexed []model.SearchableEntity
}

// NewPreciseMatcher creates a precise matcher and indexes entities.
// minSearchTermMatchRatio is the share of terms (0 to 1) a candidate must match.
func NewPreciseMatcher(entities []model.SearchableEntity, minSearchTermMatchRatio float64) (*PreciseMatcher, error) {
	m := &PreciseMatcher{ratio: minSearchTermMatchRatio}
	if err := m.rebuild(entities); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PreciseMatcher) Approach() string { return config.ApproachPrecise }

// Close releases the bleve index.
func (m *PreciseMatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index == nil {
		return nil
	}
	err := m.index.Close()
	m.index = nil
	m.indexed = nil
	return err
}

func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	if err := indexMapping.AddCustomAnalyzer(textAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("failed to register text analyzer: %w", err)
	}
	if err := indexMapping.AddCustomAnalyzer(keywordAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("failed to register keyword analyzer: %w", err)
	}

	entityMapping := bleve.NewDocumentMapping()
	for _, field := range []string{"title", "url", "folders"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = textAnalyzer
		fm.Store = false
		fm.IncludeInAll = false
		entityMapping.AddFieldMappingsAt(field, fm)
	}
	tagMapping := bleve.NewTextFieldMapping()
	tagMapping.Analyzer = keywordAnalyzer
	tagMapping.Store = false
	tagMapping.IncludeInAll = false
	entityMapping.AddFieldMappingsAt("tags", tagMapping)

	indexMapping.DefaultMapping = entityMapping
	indexMapping.DefaultAnalyzer = textAnalyzer
	return indexMapping, nil
}

// rebuild replaces the index with one over entities. Document IDs are the
// positions of the entities in the slice.
func (m *PreciseMatcher) rebuild(entities []model.SearchableEntity) error {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return err
	}
	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := index.NewBatch()
	for i := range entities {
		e := entities[i]
		folders := make([]string, 0, len(e.FolderPath))
		for _, folder := range e.FolderPath {
			folders = append(folders, indexText(folder))
		}
		doc := map[string]interface{}{
			"title":   indexText(e.Title),
			"url":     indexText(tokenizer.NormalizeURL(e.URL)),
			"tags":    e.Tags,
			"folders": folders,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			log.Printf("Warning: Failed to index entity %s: %v", e.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return fmt.Errorf("failed to batch index entities: %w", err)
	}

	if m.index != nil {
		if err := m.index.Close(); err != nil {
			log.Printf("Warning: Failed to close previous bleve index: %v", err)
		}
	}
	m.index = index
	m.indexed = entities
	return nil
}

// bind makes sure the index covers exactly entities, reindexing if the
// matcher is handed a different slice than the one it was built for.
func (m *PreciseMatcher) bind(entities []model.SearchableEntity) error {
	m.mu.RLock()
	same := m.index != nil && sameSlice(m.indexed, entities)
	m.mu.RUnlock()
	if same {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != nil && sameSlice(m.indexed, entities) {
		return nil
	}
	log.Printf("Info: Reindexing %d entities for precise matching", len(entities))
	return m.rebuild(entities)
}

// indexText splits on punctuation the same way match evidence does, so that
// "mail.example.com" is indexed as three words.
func indexText(s string) string {
	return strings.Join(tokenizer.Tokenize(s), " ")
}

func sameSlice(a, b []model.SearchableEntity) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// LocateCandidates returns, in entity order, every entity that matches enough
// of the query terms.
func (m *PreciseMatcher) LocateCandidates(entities []model.SearchableEntity, terms model.QueryTerms) []model.Candidate {
	scoped := terms.ScopedTerms()
	if len(scoped) == 0 || len(entities) == 0 {
		return []model.Candidate{}
	}

	if err := m.bind(entities); err != nil {
		log.Printf("Warning: %v", internalErrors.NewMatcherError(m.Approach(), err.Error()))
		return []model.Candidate{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Which entities each term hits, keyed by entity position
	hitsByTerm := make([]map[int]bool, len(scoped))
	touched := make(map[int]bool)
	for i, st := range scoped {
		hits, err := m.termHits(st, len(entities))
		if err != nil {
			log.Printf("Warning: %v", internalErrors.NewMatcherError(m.Approach(),
				fmt.Sprintf("query for term '%s' failed, treating it as no match: %v", st.Term, err)))
			continue
		}
		hitsByTerm[i] = hits
		for idx := range hits {
			touched[idx] = true
		}
	}

	candidates := make([]model.Candidate, 0, len(touched))
	for idx := range entities {
		if !touched[idx] {
			continue
		}
		candidate, ok := evaluateSafely(m.Approach(), entities[idx], func() (model.Candidate, bool) {
			return m.evaluate(idx, entities[idx], scoped, hitsByTerm)
		})
		if ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

func (m *PreciseMatcher) termHits(st model.ScopedTerm, size int) (map[int]bool, error) {
	queries := make([]query.Query, 0, len(st.Fields))
	for _, field := range st.Fields {
		prefix := bleve.NewPrefixQuery(st.Term)
		prefix.SetField(indexFields[field])
		queries = append(queries, prefix)
	}

	request := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(queries...), size, 0, false)
	result, err := m.index.Search(request)
	if err != nil {
		return nil, err
	}

	hits := make(map[int]bool, len(result.Hits))
	for _, hit := range result.Hits {
		idx, err := strconv.Atoi(hit.ID)
		if err != nil || idx < 0 || idx >= size {
			continue
		}
		hits[idx] = true
	}
	return hits, nil
}

func (m *PreciseMatcher) evaluate(index int, e model.SearchableEntity, scoped []model.ScopedTerm, hitsByTerm []map[int]bool) (model.Candidate, bool) {
	text := newEntityText(e)
	candidate := model.Candidate{Index: index}

	for i, st := range scoped {
		if !hitsByTerm[i][index] {
			continue
		}
		termMatched := false
		for _, field := range st.Fields {
			kind := text[field].exactKind(st.Term)
			if kind == "" {
				continue
			}
			candidate.Matches = append(candidate.Matches, model.FieldMatch{Field: field, Term: st.Term, Kind: kind})
			termMatched = true
		}
		if termMatched {
			candidate.MatchedTerms++
		}
	}

	if len(candidate.Matches) == 0 {
		return candidate, false
	}
	if float64(candidate.MatchedTerms)/float64(len(scoped)) < m.ratio {
		return candidate, false
	}
	return candidate, true
}
