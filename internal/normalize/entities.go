// Package normalize converts raw tab, bookmark, history and search engine
// records into SearchableEntity values and assembles them into snapshots.
//
// Normalization never drops a record: missing or malformed fields are replaced
// by safe defaults so that one bad record cannot abort a snapshot build.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
)

// tagWordRegex matches a whole word that is a tag: the marker followed by
// letters, digits, underscores or hyphens.
var tagWordRegex = regexp.MustCompile(`^#[\p{L}\p{N}_-]+$`)

// Tabs normalizes open tabs. A tab without an id falls back to its position.
func Tabs(raw []model.RawTab) []model.SearchableEntity {
	entities := make([]model.SearchableEntity, 0, len(raw))
	for i, tab := range raw {
		id := tab.ID
		if id <= 0 {
			id = i
		}
		entities = append(entities, model.SearchableEntity{
			ID:    fmt.Sprintf("tab-%d", id),
			Type:  model.EntityTypeTab,
			Title: strings.TrimSpace(tab.Title),
			URL:   strings.TrimSpace(tab.URL),
		})
	}
	return entities
}

// Bookmarks normalizes bookmark leaves. The container path becomes the folder
// path and "#tag" words are moved from the title into the tag set.
func Bookmarks(raw []model.RawBookmark) []model.SearchableEntity {
	entities := make([]model.SearchableEntity, 0, len(raw))
	for i, bm := range raw {
		id := strings.TrimSpace(bm.ID)
		if id == "" {
			id = fmt.Sprintf("%d", i)
		}

		title, tags := ExtractTags(bm.Title)
		entities = append(entities, model.SearchableEntity{
			ID:         "bookmark-" + id,
			Type:       model.EntityTypeBookmark,
			Title:      title,
			URL:        strings.TrimSpace(bm.URL),
			FolderPath: SplitFolderPath(bm.ContainerPath),
			Tags:       tags,
		})
	}
	return entities
}

// History normalizes history items. Negative visit counts become 0 and a zero
// last-visit time becomes nil.
func History(raw []model.RawHistoryItem) []model.SearchableEntity {
	entities := make([]model.SearchableEntity, 0, len(raw))
	for i, item := range raw {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("%d", i)
		}

		visits := item.VisitCount
		if visits < 0 {
			visits = 0
		}

		entities = append(entities, model.SearchableEntity{
			ID:            "history-" + id,
			Type:          model.EntityTypeHistory,
			Title:         strings.TrimSpace(item.Title),
			URL:           strings.TrimSpace(item.URL),
			VisitCount:    visits,
			LastVisitedAt: optionalTime(item.LastVisitTime),
		})
	}
	return entities
}

// SearchEngines turns the configured templates into entities. The URL keeps the
// "$s" placeholder; it is filled in per query.
func SearchEngines(templates []config.SearchEngineTemplate) []model.SearchableEntity {
	entities := make([]model.SearchableEntity, 0, len(templates))
	for _, tpl := range templates {
		name := strings.TrimSpace(tpl.Name)
		entities = append(entities, model.SearchableEntity{
			ID:    "se-" + strings.ToLower(strings.Join(strings.Fields(name), "-")),
			Type:  model.EntityTypeSearchEngine,
			Title: name,
			URL:   strings.TrimSpace(tpl.URLTemplate),
		})
	}
	return entities
}

// ExtractTags removes "#tag" words from a title and returns the cleaned title
// and the lowercase tags in first-seen order, without duplicates.
func ExtractTags(title string) (string, []string) {
	words := strings.Fields(title)

	var tags []string
	seen := make(map[string]bool)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if !tagWordRegex.MatchString(word) {
			kept = append(kept, word)
			continue
		}
		tag := tokenizer.Normalize(strings.TrimPrefix(word, model.TagMarker))
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 {
		return strings.TrimSpace(title), nil
	}
	return strings.Join(kept, " "), tags
}

// SplitFolderPath splits a container path on the folder separator, trimming
// names and dropping empty segments.
func SplitFolderPath(path string) []string {
	var folders []string
	for _, segment := range strings.Split(path, model.FolderSeparator) {
		if name := strings.TrimSpace(segment); name != "" {
			folders = append(folders, name)
		}
	}
	return folders
}

// EnrichVisits copies visit data from history onto tabs and bookmarks with the
// same URL. The entry with the most visits wins when a URL appears twice in
// history. Entities are updated in place.
func EnrichVisits(entities []model.SearchableEntity, history []model.SearchableEntity) {
	byURL := make(map[string]*model.SearchableEntity, len(history))
	for i := range history {
		key := tokenizer.NormalizeURL(history[i].URL)
		if key == "" {
			continue
		}
		if existing, ok := byURL[key]; !ok || history[i].VisitCount > existing.VisitCount {
			byURL[key] = &history[i]
		}
	}

	for i := range entities {
		e := &entities[i]
		if e.Type != model.EntityTypeTab && e.Type != model.EntityTypeBookmark {
			continue
		}
		h, ok := byURL[tokenizer.NormalizeURL(e.URL)]
		if !ok {
			continue
		}
		if h.VisitCount > e.VisitCount {
			e.VisitCount = h.VisitCount
		}
		if h.LastVisitedAt != nil {
			visited := *h.LastVisitedAt
			e.LastVisitedAt = &visited
		}
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
