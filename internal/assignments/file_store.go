package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

const (
	defaultStoreDirectoryNameConstant = "worktree-rainbow"
	defaultStoreFileNameConstant      = "assignments.json"
	storeFileModeConstant             = 0o644
	storeDirectoryModeConstant        = 0o755
	storeTemporaryPatternConstant     = "assignments-*.json"
	storeIndentConstant               = "  "
	storePathRequiredMessageConstant  = "assignment store path is required"
	readStoreErrorTemplateConstant    = "failed to read assignment store: %w"
	decodeStoreErrorTemplateConstant  = "failed to decode assignment store: %w"
	writeStoreErrorTemplateConstant   = "failed to write assignment store: %w"
	storedColorErrorTemplateConstant  = "stored color for %s is invalid: %w"
)

// ErrStorePathRequired indicates a FileStore was constructed without a path.
var ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)

// FileStore keeps assignments in a JSON document on disk. Every operation
// reads the current document and rewrites it through a temporary file and
// rename, so assignments survive process restarts and crashed writes never
// truncate the ledger.
type FileStore struct {
	storePath string
	mutex     sync.Mutex
}

// NewFileStore constructs a FileStore persisting to the provided path.
func NewFileStore(storePath string) (*FileStore, error) {
	trimmedPath := strings.TrimSpace(storePath)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	return &FileStore{storePath: trimmedPath}, nil
}

// DefaultStorePath resolves the installation-scoped ledger location under
// the user configuration directory.
func DefaultStorePath() (string, error) {
	configurationDirectory, configurationError := os.UserConfigDir()
	if configurationError != nil {
		return "", configurationError
	}
	return filepath.Join(configurationDirectory, defaultStoreDirectoryNameConstant, defaultStoreFileNameConstant), nil
}

// Get loads the assignment for the repository branch when one exists.
func (store *FileStore) Get(executionContext context.Context, repositoryRoot string, branchName string) (palette.Color, bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	assignmentRecords, loadError := store.loadRecords()
	if loadError != nil {
		return palette.Color{}, false, loadError
	}

	assignmentKey := AssignmentKey(repositoryRoot, branchName)
	storedValue, valueExists := assignmentRecords[assignmentKey]
	if !valueExists {
		return palette.Color{}, false, nil
	}

	storedColor, parseError := palette.ParseHex(storedValue)
	if parseError != nil {
		return palette.Color{}, false, fmt.Errorf(storedColorErrorTemplateConstant, assignmentKey, parseError)
	}
	return storedColor, true, nil
}

// Put records the assignment for the repository branch, replacing any
// previous color.
func (store *FileStore) Put(executionContext context.Context, repositoryRoot string, branchName string, assignedColor palette.Color) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	assignmentRecords, loadError := store.loadRecords()
	if loadError != nil {
		return loadError
	}

	assignmentRecords[AssignmentKey(repositoryRoot, branchName)] = assignedColor.Hex()
	return store.saveRecords(assignmentRecords)
}

// Delete removes the assignment for the repository branch. Deleting an
// absent assignment succeeds without touching the ledger.
func (store *FileStore) Delete(executionContext context.Context, repositoryRoot string, branchName string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	assignmentRecords, loadError := store.loadRecords()
	if loadError != nil {
		return loadError
	}

	assignmentKey := AssignmentKey(repositoryRoot, branchName)
	if _, valueExists := assignmentRecords[assignmentKey]; !valueExists {
		return nil
	}

	delete(assignmentRecords, assignmentKey)
	return store.saveRecords(assignmentRecords)
}

func (store *FileStore) loadRecords() (map[string]string, error) {
	fileContent, readError := os.ReadFile(store.storePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf(readStoreErrorTemplateConstant, readError)
	}

	assignmentRecords := map[string]string{}
	if unmarshalError := json.Unmarshal(fileContent, &assignmentRecords); unmarshalError != nil {
		return nil, fmt.Errorf(decodeStoreErrorTemplateConstant, unmarshalError)
	}
	return assignmentRecords, nil
}

func (store *FileStore) saveRecords(assignmentRecords map[string]string) error {
	storeDirectory := filepath.Dir(store.storePath)
	if directoryError := os.MkdirAll(storeDirectory, storeDirectoryModeConstant); directoryError != nil {
		return fmt.Errorf(writeStoreErrorTemplateConstant, directoryError)
	}

	encodedRecords, marshalError := json.MarshalIndent(assignmentRecords, "", storeIndentConstant)
	if marshalError != nil {
		return fmt.Errorf(writeStoreErrorTemplateConstant, marshalError)
	}
	encodedRecords = append(encodedRecords, '\n')

	temporaryFile, temporaryError := os.CreateTemp(storeDirectory, storeTemporaryPatternConstant)
	if temporaryError != nil {
		return fmt.Errorf(writeStoreErrorTemplateConstant, temporaryError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(encodedRecords); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeStoreErrorTemplateConstant, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeStoreErrorTemplateConstant, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, storeFileModeConstant); chmodError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeStoreErrorTemplateConstant, chmodError)
	}
	if renameError := os.Rename(temporaryPath, store.storePath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeStoreErrorTemplateConstant, renameError)
	}
	return nil
}
