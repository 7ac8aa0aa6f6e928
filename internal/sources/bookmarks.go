package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
)

// bookmarkRoots is the order in which the top-level folders are walked.
var bookmarkRoots = []string{"bookmark_bar", "other", "synced"}

// ChromeBookmarks reads the "Bookmarks" JSON file of a Chrome profile and
// flattens its tree into leaves.
type ChromeBookmarks struct {
	Path string
}

// NewChromeBookmarks creates a bookmark reader for the file at path.
func NewChromeBookmarks(path string) *ChromeBookmarks {
	return &ChromeBookmarks{Path: path}
}

type bookmarkFile struct {
	Roots map[string]json.RawMessage `json:"roots"`
}

type bookmarkNode struct {
	ID       looseString      `json:"id"`
	Name     looseString      `json:"name"`
	Type     looseString      `json:"type"`
	URL      looseString      `json:"url"`
	Children bookmarkChildren `json:"children"`
}

// bookmarkChildren decodes each child on its own and skips the ones that are
// not objects.
type bookmarkChildren []bookmarkNode

func (c *bookmarkChildren) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Warning: Ignoring malformed bookmark children: %v", err)
		return nil
	}

	nodes := make([]bookmarkNode, 0, len(raw))
	for _, child := range raw {
		node, ok := decodeBookmarkNode(child)
		if ok {
			nodes = append(nodes, node)
		}
	}
	*c = nodes
	return nil
}

func decodeBookmarkNode(raw json.RawMessage) (bookmarkNode, bool) {
	var node bookmarkNode
	if isNull(raw) {
		return node, false
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		log.Printf("Warning: Skipping malformed bookmark node: %v", err)
		return node, false
	}
	return node, true
}

// ReadBookmarks parses the bookmark file and walks bookmark_bar, other and
// synced depth-first. The container path of each leaf is its enclosing folder
// names joined by model.FolderSeparator, including the root folder name.
func (b *ChromeBookmarks) ReadBookmarks(ctx context.Context) ([]model.RawBookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.Path) // #nosec G304 -- path is supplied by the local user
	if err != nil {
		return nil, internalErrors.NewSourceError("bookmarks", err)
	}

	var file bookmarkFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, internalErrors.NewSourceError("bookmarks", fmt.Errorf("failed to decode %s: %w", b.Path, err))
	}

	bookmarks := make([]model.RawBookmark, 0)
	for _, rootName := range bookmarkRoots {
		raw, ok := file.Roots[rootName]
		if !ok {
			continue
		}
		root, ok := decodeBookmarkNode(raw)
		if !ok {
			continue
		}
		bookmarks = walkBookmarks(root, nil, bookmarks)
	}
	return bookmarks, nil
}

func walkBookmarks(node bookmarkNode, parents []string, out []model.RawBookmark) []model.RawBookmark {
	isFolder := node.Type == "folder" || (node.Type == "" && node.URL == "")
	if !isFolder {
		return append(out, model.RawBookmark{
			ID:            string(node.ID),
			Title:         string(node.Name),
			URL:           string(node.URL),
			ContainerPath: strings.Join(parents, model.FolderSeparator),
		})
	}

	path := parents
	if name := strings.TrimSpace(string(node.Name)); name != "" {
		// A separator inside a folder name would split it into two folders
		name = strings.ReplaceAll(name, model.FolderSeparator, " ")
		path = append(append([]string(nil), parents...), name)
	}
	for _, child := range node.Children {
		out = walkBookmarks(child, path, out)
	}
	return out
}
