package model

import "time"

// RawTab is an open tab as reported by the tab lister.
type RawTab struct {
	ID       int    `json:"id"`
	WindowID int    `json:"windowId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Active   bool   `json:"active"`
	Pinned   bool   `json:"pinned"`
}

// RawBookmark is a bookmark leaf flattened out of the bookmark tree.
// ContainerPath holds the names of the enclosing folders joined by FolderSeparator.
type RawBookmark struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	ContainerPath string `json:"containerPath"`
}

// RawHistoryItem is a history entry as reported by the history reader.
// VisitCount is the total number of visits, not only those inside the read window.
type RawHistoryItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	VisitCount    int       `json:"visitCount"`
	LastVisitTime time.Time `json:"lastVisitTime"`
}
