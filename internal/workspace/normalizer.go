package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
	windowsOperatingSystemConstant  = "windows"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// RootNormalizer prepares configured root paths for repository discovery.
// Normalization trims whitespace, expands home shortcuts, converts paths to
// absolute form, and prunes roots nested under other roots.
type RootNormalizer struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewRootNormalizer constructs a RootNormalizer using the operating system home lookup.
func NewRootNormalizer() *RootNormalizer {
	return NewRootNormalizerWithProvider(os.UserHomeDir)
}

// NewRootNormalizerWithProvider constructs a RootNormalizer with a custom home provider.
func NewRootNormalizerWithProvider(provider HomeDirectoryProvider) *RootNormalizer {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &RootNormalizer{homeDirectoryProvider: provider}
}

// Normalize cleans the candidate roots and returns them in first-seen order.
// Blank candidates are dropped, duplicates collapse onto their first
// occurrence, and a root nested under an earlier or shallower root is pruned.
func (normalizer *RootNormalizer) Normalize(candidateRoots []string) []string {
	normalizedRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedCandidate := strings.TrimSpace(candidateRoot)
		if len(trimmedCandidate) == 0 {
			continue
		}

		expandedPath := normalizer.expandHome(trimmedCandidate)
		if len(expandedPath) == 0 {
			continue
		}

		normalizedRoots = append(normalizedRoots, canonicalizeRootPath(expandedPath))
	}

	if len(normalizedRoots) == 0 {
		return nil
	}
	return pruneNestedRoots(normalizedRoots)
}

func (normalizer *RootNormalizer) expandHome(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := normalizer.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return resolvedHomeDirectory
	}
	if strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) {
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	}
	if tildeWithPathSeparatorPrefix != tildeForwardSlashPrefixConstant && strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix) {
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	}

	return candidatePath
}

func (normalizer *RootNormalizer) resolveHomeDirectory() string {
	normalizer.initializationGuard.Do(func() {
		normalizer.homeDirectory, normalizer.homeDirectoryError = normalizer.homeDirectoryProvider()
	})
	if normalizer.homeDirectoryError != nil {
		return ""
	}
	return normalizer.homeDirectory
}

func canonicalizeRootPath(path string) string {
	cleanedPath := filepath.Clean(path)
	absolutePath, absoluteError := filepath.Abs(cleanedPath)
	if absoluteError != nil {
		return cleanedPath
	}
	return filepath.Clean(absolutePath)
}

func pruneNestedRoots(candidateRoots []string) []string {
	type rootDetails struct {
		originalIndex int
		value         string
		comparison    string
	}

	rootEntries := make([]rootDetails, 0, len(candidateRoots))
	for index, candidateRoot := range candidateRoots {
		rootEntries = append(rootEntries, rootDetails{
			originalIndex: index,
			value:         candidateRoot,
			comparison:    comparisonPath(candidateRoot),
		})
	}

	// Shallower roots sort first so nested candidates meet their parent
	// before selection.
	sort.SliceStable(rootEntries, func(first int, second int) bool {
		firstLength := len(rootEntries[first].comparison)
		secondLength := len(rootEntries[second].comparison)
		if firstLength == secondLength {
			return rootEntries[first].comparison < rootEntries[second].comparison
		}
		return firstLength < secondLength
	})

	selectedEntries := make([]rootDetails, 0, len(rootEntries))
	for _, candidateEntry := range rootEntries {
		nested := false
		for _, selectedEntry := range selectedEntries {
			if candidateEntry.comparison == selectedEntry.comparison || pathContains(selectedEntry.comparison, candidateEntry.comparison) {
				nested = true
				break
			}
		}
		if !nested {
			selectedEntries = append(selectedEntries, candidateEntry)
		}
	}

	sort.SliceStable(selectedEntries, func(first int, second int) bool {
		return selectedEntries[first].originalIndex < selectedEntries[second].originalIndex
	})

	prunedRoots := make([]string, 0, len(selectedEntries))
	for _, selectedEntry := range selectedEntries {
		prunedRoots = append(prunedRoots, selectedEntry.value)
	}
	return prunedRoots
}

func comparisonPath(path string) string {
	comparison := filepath.Clean(path)
	if runtime.GOOS == windowsOperatingSystemConstant {
		comparison = strings.ToLower(comparison)
	}
	return comparison
}

// pathContains reports whether candidate sits at or beneath parent, honoring
// path component boundaries so /a never contains /ab.
func pathContains(parent string, candidate string) bool {
	if candidate == parent {
		return true
	}
	if len(candidate) <= len(parent) {
		return false
	}
	if !strings.HasPrefix(candidate, parent) {
		return false
	}
	if parent[len(parent)-1] == os.PathSeparator {
		return true
	}
	return candidate[len(parent)] == os.PathSeparator
}
