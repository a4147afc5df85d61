package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
)

const gitMetadataEntryNameConstant = ".git"

// Discoverer locates git repositories on disk.
type Discoverer struct{}

// NewDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewDiscoverer() *Discoverer {
	return &Discoverer{}
}

// DiscoverRepositories walks the provided roots and returns directories
// containing a .git entry, in first-seen order. A discovered work tree is
// not descended into, so repositories nested inside another work tree are
// not reported. Unreadable paths are skipped rather than failing the walk.
func (discoverer *Discoverer) DiscoverRepositories(roots []string) ([]string, error) {
	seenRepositories := make(map[string]struct{})
	var repositories []string

	for _, root := range roots {
		walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, entryError error) error {
			if entryError != nil {
				return nil
			}
			if !directoryEntry.IsDir() {
				return nil
			}

			gitMetadataPath := filepath.Join(path, gitMetadataEntryNameConstant)
			if _, statError := os.Stat(gitMetadataPath); statError != nil {
				return nil
			}

			if _, alreadySeen := seenRepositories[path]; !alreadySeen {
				seenRepositories[path] = struct{}{}
				repositories = append(repositories, path)
			}
			return fs.SkipDir
		})
		if walkError != nil {
			return nil, walkError
		}
	}

	return repositories, nil
}
