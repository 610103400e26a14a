package tui

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tuannvm/dynoteam/internal/input"
)

// maxRecentFiles caps the team files offered by the dashboard.
const maxRecentFiles = 10

// searchRoots are scanned besides the working directory.
var searchRoots = []string{input.ConfigDir, "teams", "examples"}

// candidates holds what the dashboard offers before falling back to the file picker.
type candidates struct {
	// Folders are search roots that exist plus their visible subfolders.
	Folders []string
	// Files are team files, most recently modified first.
	Files []string
}

func findCandidates() candidates {
	var c candidates
	type stamped struct {
		path string
		mod  time.Time
	}
	var files []stamped

	for _, dir := range append([]string{"."}, searchRoots...) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		if dir != "." {
			c.Folders = append(c.Folders, dir)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if dir != "." && !strings.HasPrefix(e.Name(), ".") {
					c.Folders = append(c.Folders, path)
				}
				continue
			}
			if !input.IsSupported(path) {
				continue
			}
			if info, err := e.Info(); err == nil {
				files = append(files, stamped{path, info.ModTime()})
			}
		}
	}

	slices.SortFunc(files, func(a, b stamped) int {
		if n := b.mod.Compare(a.mod); n != 0 {
			return n
		}
		return cmp.Compare(a.path, b.path)
	})
	for _, f := range files[:min(len(files), maxRecentFiles)] {
		c.Files = append(c.Files, f.path)
	}
	return c
}
