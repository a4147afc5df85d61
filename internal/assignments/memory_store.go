package assignments

import (
	"context"
	"fmt"
	"sync"

	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

// MemoryStore keeps assignments in process memory. It backs tests and hosts
// that supply their own durability.
type MemoryStore struct {
	mutex   sync.RWMutex
	records map[string]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]string{}}
}

// Get loads the assignment for the repository branch when one exists.
func (store *MemoryStore) Get(executionContext context.Context, repositoryRoot string, branchName string) (palette.Color, bool, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	assignmentKey := AssignmentKey(repositoryRoot, branchName)
	storedValue, valueExists := store.records[assignmentKey]
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
func (store *MemoryStore) Put(executionContext context.Context, repositoryRoot string, branchName string, assignedColor palette.Color) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.records[AssignmentKey(repositoryRoot, branchName)] = assignedColor.Hex()
	return nil
}

// Delete removes the assignment for the repository branch when present.
func (store *MemoryStore) Delete(executionContext context.Context, repositoryRoot string, branchName string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	delete(store.records, AssignmentKey(repositoryRoot, branchName))
	return nil
}

// Len reports how many assignments the store currently holds.
func (store *MemoryStore) Len() int {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	return len(store.records)
}
