package sources

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gcbaptista/go-browser-search/config"
	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
)

const historyQuery = `
SELECT id, url, title, visit_count, last_visit_time
FROM urls
WHERE hidden = 0 AND last_visit_time >= ?
ORDER BY last_visit_time DESC, id ASC
LIMIT ?`

// ChromeHistory reads the "History" SQLite database of a Chrome profile.
// The browser keeps the database locked while running, so it is copied to a
// temporary file and read from there.
type ChromeHistory struct {
	Path string
	now  func() time.Time
}

// NewChromeHistory creates a history reader for the database at path.
func NewChromeHistory(path string) *ChromeHistory {
	return &ChromeHistory{Path: path, now: time.Now}
}

// ReadHistory returns non-hidden entries visited within opts.DaysAgo days,
// newest first, at most opts.MaxItems of them. A zero DaysAgo or MaxItems
// disables that bound. VisitCount is the total stored visit count of the URL,
// not the count inside the window.
func (h *ChromeHistory) ReadHistory(ctx context.Context, opts config.HistoryOptions) ([]model.RawHistoryItem, error) {
	tmpDir, err := os.MkdirTemp("", "browser-search-history-*")
	if err != nil {
		return nil, internalErrors.NewSourceError("history", fmt.Errorf("failed to create temp dir: %w", err))
	}
	defer func() {
		if removeErr := os.RemoveAll(tmpDir); removeErr != nil {
			log.Printf("Warning: Failed to remove temp dir %s: %v", tmpDir, removeErr)
		}
	}()

	dbPath := filepath.Join(tmpDir, "History")
	if err := copyFile(h.Path, dbPath); err != nil {
		return nil, internalErrors.NewSourceError("history", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, internalErrors.NewSourceError("history", fmt.Errorf("failed to open database: %w", err))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Warning: Failed to close history database: %v", closeErr)
		}
	}()

	var since int64
	if opts.DaysAgo > 0 {
		since = toWebKit(h.clock().AddDate(0, 0, -opts.DaysAgo))
	}
	limit := -1 // SQLite: no limit
	if opts.MaxItems > 0 {
		limit = opts.MaxItems
	}

	rows, err := db.QueryContext(ctx, historyQuery, since, limit)
	if err != nil {
		return nil, internalErrors.NewSourceError("history", fmt.Errorf("failed to query urls: %w", err))
	}
	defer func() { _ = rows.Close() }()

	items := make([]model.RawHistoryItem, 0)
	for rows.Next() {
		var (
			id            int64
			url           string
			title         sql.NullString
			visitCount    sql.NullInt64
			lastVisitTime sql.NullInt64
		)
		if err := rows.Scan(&id, &url, &title, &visitCount, &lastVisitTime); err != nil {
			log.Printf("Warning: Skipping unreadable history row: %v", err)
			continue
		}
		items = append(items, model.RawHistoryItem{
			ID:            strconv.FormatInt(id, 10),
			Title:         title.String,
			URL:           url,
			VisitCount:    int(visitCount.Int64),
			LastVisitTime: fromWebKit(lastVisitTime.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, internalErrors.NewSourceError("history", fmt.Errorf("failed to read urls: %w", err))
	}
	return items, nil
}

func (h *ChromeHistory) clock() time.Time {
	if h.now == nil {
		return time.Now()
	}
	return h.now()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- path is supplied by the local user
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) // #nosec G304 -- dst is inside our own temp dir
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
