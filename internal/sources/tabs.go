// Package sources reads raw tabs, bookmarks and history from files a browser
// (or a companion process) leaves on disk.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
)

// TabFile lists tabs from a JSON array of tab records:
//
//	[{"id": 1, "windowId": 1, "title": "Go", "url": "https://go.dev", "active": true, "pinned": false}]
type TabFile struct {
	Path string
}

// NewTabFile creates a tab lister reading from path.
func NewTabFile(path string) *TabFile {
	return &TabFile{Path: path}
}

type tabRecord struct {
	ID       looseInt    `json:"id"`
	WindowID looseInt    `json:"windowId"`
	Title    looseString `json:"title"`
	URL      looseString `json:"url"`
	Active   looseBool   `json:"active"`
	Pinned   looseBool   `json:"pinned"`
}

// ListTabs reads the tab file. Fields of the wrong type are defaulted and
// records that are not objects are skipped; only an unreadable file or a
// document that is not an array fails.
func (f *TabFile) ListTabs(ctx context.Context) ([]model.RawTab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path) // #nosec G304 -- path is supplied by the local user
	if err != nil {
		return nil, internalErrors.NewSourceError("tabs", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, internalErrors.NewSourceError("tabs", fmt.Errorf("failed to decode %s: %w", f.Path, err))
	}

	tabs := make([]model.RawTab, 0, len(records))
	for i, raw := range records {
		if isNull(raw) {
			log.Printf("Warning: Skipping empty tab record %d in %s", i, f.Path)
			continue
		}
		var record tabRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			log.Printf("Warning: Skipping malformed tab record %d in %s: %v", i, f.Path, err)
			continue
		}
		tabs = append(tabs, model.RawTab{
			ID:       int(record.ID),
			WindowID: int(record.WindowID),
			Title:    string(record.Title),
			URL:      string(record.URL),
			Active:   bool(record.Active),
			Pinned:   bool(record.Pinned),
		})
	}
	return tabs, nil
}
