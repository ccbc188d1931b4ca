package retention

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"boxpull/internal/share"
)

// ScanDir recursively walks a local directory and catalogs every regular
// file for planning. The walk ignores unreadable entries rather than
// aborting; cleanup should cover whatever is reachable.
func ScanDir(dir string) ([]share.Item, error) {
	if dir == "" {
		return nil, share.Wrap(share.ErrConfiguration, "scan", "no directory given", nil)
	}

	var items []share.Item
	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		item := share.NewItem(entry.Name(), share.KindFile)
		item.LocalPath = path
		items = append(items, item)
		return nil
	})
	if walkErr != nil {
		return nil, share.Wrap(share.ErrConfiguration, "scan", fmt.Sprintf("walk %s", dir), walkErr)
	}
	return items, nil
}
