package normalize

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-browser-search/config"
	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/services"
	"github.com/gcbaptista/go-browser-search/store"
)

// Sources groups the input collaborators. A nil collaborator is skipped.
type Sources struct {
	Tabs      services.TabLister
	Bookmarks services.BookmarkReader
	History   services.HistoryReader
}

// Build reads all collaborators concurrently and assembles a new snapshot.
// Entities are ordered bookmarks, tabs, history, each in source order.
// Any collaborator error aborts the build; no partial snapshot is returned.
func Build(ctx context.Context, src Sources, opts config.Options) (*store.Snapshot, error) {
	var (
		rawTabs      []model.RawTab
		rawBookmarks []model.RawBookmark
		rawHistory   []model.RawHistoryItem
	)

	g, gctx := errgroup.WithContext(ctx)

	if src.Tabs != nil {
		g.Go(func() error {
			tabs, err := src.Tabs.ListTabs(gctx)
			if err != nil {
				return asSourceError("tabs", err)
			}
			rawTabs = tabs
			return nil
		})
	}
	if src.Bookmarks != nil {
		g.Go(func() error {
			bookmarks, err := src.Bookmarks.ReadBookmarks(gctx)
			if err != nil {
				return asSourceError("bookmarks", err)
			}
			rawBookmarks = bookmarks
			return nil
		})
	}
	if src.History != nil {
		g.Go(func() error {
			items, err := src.History.ReadHistory(gctx, opts.History)
			if err != nil {
				return asSourceError("history", err)
			}
			rawHistory = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bookmarks := Bookmarks(rawBookmarks)
	tabs := Tabs(rawTabs)
	history := History(rawHistory)

	entities := make([]model.SearchableEntity, 0, len(bookmarks)+len(tabs)+len(history))
	entities = append(entities, bookmarks...)
	entities = append(entities, tabs...)
	entities = append(entities, history...)
	EnrichVisits(entities, history)

	snapshot := store.NewSnapshot(entities, SearchEngines(opts.SearchEngines))
	log.Printf("Info: Built snapshot with %d bookmarks, %d tabs, %d history items and %d search engines",
		len(bookmarks), len(tabs), len(history), len(snapshot.SearchEngines))
	return snapshot, nil
}

func asSourceError(source string, err error) error {
	var sourceErr *internalErrors.SourceError
	if errors.As(err, &sourceErr) {
		return err
	}
	return internalErrors.NewSourceError(source, err)
}
