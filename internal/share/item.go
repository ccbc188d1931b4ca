package share

import (
	"time"

	"boxpull/internal/report"
)

// Kind classifies a discovered item.
type Kind string

const (
	KindFile    Kind = "file"
	KindFolder  Kind = "folder"
	KindUnknown Kind = "unknown"
)

// Item is one entry discovered in a remote shared folder or a local
// directory walk. Entries are produced fresh per enumeration pass and are
// never persisted across runs.
//
// The locator is polymorphic over what the producing strategy could learn:
// a stable file ID, a direct download URL, a browser row reference, or a
// local path. Retrieval and deletion strategies use whichever field is set.
type Item struct {
	Name Name
	Kind Kind

	// ID is the remote file identifier, when a metadata strategy found one.
	ID string
	// DownloadURL is a direct content URL, when the source exposed one.
	DownloadURL string
	// RowRef is the WebDriver element reference for UI-driven handling.
	RowRef string
	// LocalPath is set for items found by a local directory walk.
	LocalPath string

	// ReportDate is set iff Name matches the dated report convention.
	ReportDate time.Time
	HasDate    bool
}

// Name is a display filename. It exists as its own type so plan output and
// logging can normalize consistently.
type Name = string

// NewItem builds an Item and classifies its name, stamping ReportDate when
// the name follows the dated report convention.
func NewItem(name string, kind Kind) Item {
	item := Item{Name: name, Kind: kind}
	if date, ok := report.ParseDate(name); ok {
		item.ReportDate = date
		item.HasDate = true
	}
	return item
}

// IsFile reports whether the entry is a plain file.
func (i Item) IsFile() bool { return i.Kind == KindFile }

// IsImage reports whether the entry carries an image extension.
func (i Item) IsImage() bool { return report.IsImage(i.Name) }
