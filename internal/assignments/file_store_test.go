package assignments_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalifudge401/worktree-rainbow/internal/assignments"
	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

const (
	testRepositoryRootConstant = "/workspace/alpha"
	testBranchNameConstant     = "feat/login"
)

func newTestFileStore(t *testing.T) (*assignments.FileStore, string) {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "assignments.json")
	fileStore, creationError := assignments.NewFileStore(storePath)
	require.NoError(t, creationError)
	return fileStore, storePath
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, creationError := assignments.NewFileStore("   ")
	require.ErrorIs(t, creationError, assignments.ErrStorePathRequired)
}

func TestFileStoreRoundTripsAssignments(t *testing.T) {
	fileStore, _ := newTestFileStore(t)
	assignedColor, parseError := palette.ParseHex("#c32222")
	require.NoError(t, parseError)

	require.NoError(t, fileStore.Put(context.Background(), testRepositoryRootConstant, testBranchNameConstant, assignedColor))

	storedColor, colorFound, getError := fileStore.Get(context.Background(), testRepositoryRootConstant, testBranchNameConstant)
	require.NoError(t, getError)
	require.True(t, colorFound)
	require.Equal(t, assignedColor, storedColor)
}

func TestFileStoreKeepsAssignmentsAcrossReopen(t *testing.T) {
	fileStore, storePath := newTestFileStore(t)
	assignedColor := palette.Color{Red: 0x89, Green: 0x18, Blue: 0x18}
	require.NoError(t, fileStore.Put(context.Background(), testRepositoryRootConstant, testBranchNameConstant, assignedColor))

	reopenedStore, reopenError := assignments.NewFileStore(storePath)
	require.NoError(t, reopenError)

	storedColor, colorFound, getError := reopenedStore.Get(context.Background(), testRepositoryRootConstant, testBranchNameConstant)
	require.NoError(t, getError)
	require.True(t, colorFound)
	require.Equal(t, assignedColor, storedColor)
}

func TestFileStoreReportsMissingAssignment(t *testing.T) {
	fileStore, _ := newTestFileStore(t)

	_, colorFound, getError := fileStore.Get(context.Background(), testRepositoryRootConstant, "absent")
	require.NoError(t, getError)
	require.False(t, colorFound)
}

func TestFileStoreDeleteIsIdempotent(t *testing.T) {
	fileStore, _ := newTestFileStore(t)
	assignedColor := palette.Color{Red: 1, Green: 2, Blue: 3}
	require.NoError(t, fileStore.Put(context.Background(), testRepositoryRootConstant, testBranchNameConstant, assignedColor))

	require.NoError(t, fileStore.Delete(context.Background(), testRepositoryRootConstant, testBranchNameConstant))
	require.NoError(t, fileStore.Delete(context.Background(), testRepositoryRootConstant, testBranchNameConstant))

	_, colorFound, getError := fileStore.Get(context.Background(), testRepositoryRootConstant, testBranchNameConstant)
	require.NoError(t, getError)
	require.False(t, colorFound)
}

func TestFileStoreWritesCanonicalLedgerKeys(t *testing.T) {
	fileStore, storePath := newTestFileStore(t)
	assignedColor := palette.Color{Red: 0xc3, Green: 0x22, Blue: 0x22}
	require.NoError(t, fileStore.Put(context.Background(), testRepositoryRootConstant, testBranchNameConstant, assignedColor))

	rawLedger, readError := os.ReadFile(storePath)
	require.NoError(t, readError)

	ledgerRecords := map[string]string{}
	require.NoError(t, json.Unmarshal(rawLedger, &ledgerRecords))
	require.Equal(t, map[string]string{"colors:/workspace/alpha:feat/login": "#c32222"}, ledgerRecords)
}

func TestFileStoreRejectsCorruptLedger(t *testing.T) {
	fileStore, storePath := newTestFileStore(t)
	require.NoError(t, os.WriteFile(storePath, []byte("{not json"), 0o644))

	_, _, getError := fileStore.Get(context.Background(), testRepositoryRootConstant, testBranchNameConstant)
	require.Error(t, getError)
}

func TestFileStoreRejectsInvalidStoredColor(t *testing.T) {
	fileStore, storePath := newTestFileStore(t)
	corruptLedger := map[string]string{assignments.AssignmentKey(testRepositoryRootConstant, testBranchNameConstant): "not-a-color"}
	encodedLedger, marshalError := json.Marshal(corruptLedger)
	require.NoError(t, marshalError)
	require.NoError(t, os.WriteFile(storePath, encodedLedger, 0o644))

	_, _, getError := fileStore.Get(context.Background(), testRepositoryRootConstant, testBranchNameConstant)
	require.Error(t, getError)
}

func TestFileStoreLeavesNoTemporaryResidue(t *testing.T) {
	fileStore, storePath := newTestFileStore(t)
	require.NoError(t, fileStore.Put(context.Background(), testRepositoryRootConstant, testBranchNameConstant, palette.Color{Red: 9}))
	require.NoError(t, fileStore.Delete(context.Background(), testRepositoryRootConstant, testBranchNameConstant))

	directoryEntries, readError := os.ReadDir(filepath.Dir(storePath))
	require.NoError(t, readError)
	require.Len(t, directoryEntries, 1)
	require.Equal(t, filepath.Base(storePath), directoryEntries[0].Name())
}
