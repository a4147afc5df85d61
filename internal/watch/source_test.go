package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/watch"
)

func subscribeToRepository(testInstance *testing.T, repositoryRoot string) (chan struct{}, func()) {
	testInstance.Helper()
	notifications := make(chan struct{}, 16)
	notificationSource := watch.NewFilesystemNotificationSource(zap.NewNop())
	stopSubscription, subscribeError := notificationSource.Subscribe(context.Background(), repositoryRoot, func() {
		select {
		case notifications <- struct{}{}:
		default:
		}
	})
	require.NoError(testInstance, subscribeError)
	return notifications, stopSubscription
}

func TestFilesystemNotificationSourceNotifiesOnHeadChanges(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	gitMetadataPath := filepath.Join(repositoryRoot, ".git")
	require.NoError(testInstance, os.MkdirAll(gitMetadataPath, 0o755))

	notifications, stopSubscription := subscribeToRepository(testInstance, repositoryRoot)
	defer stopSubscription()

	headReferencePath := filepath.Join(gitMetadataPath, "HEAD")
	require.NoError(testInstance, os.WriteFile(headReferencePath, []byte("ref: refs/heads/feat/login\n"), 0o644))

	select {
	case <-notifications:
	case <-time.After(synchronizationTimeoutConstant):
		testInstance.Fatal("expected a notification after HEAD changed")
	}
}

func TestFilesystemNotificationSourceIgnoresUnrelatedFiles(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	gitMetadataPath := filepath.Join(repositoryRoot, ".git")
	require.NoError(testInstance, os.MkdirAll(gitMetadataPath, 0o755))

	notifications, stopSubscription := subscribeToRepository(testInstance, repositoryRoot)
	defer stopSubscription()

	configurationPath := filepath.Join(gitMetadataPath, "config")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte("[core]\n"), 0o644))

	select {
	case <-notifications:
		testInstance.Fatal("expected no notification for files other than HEAD")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestFilesystemNotificationSourceRequiresMetadataDirectory(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()

	notificationSource := watch.NewFilesystemNotificationSource(zap.NewNop())
	_, subscribeError := notificationSource.Subscribe(context.Background(), repositoryRoot, func() {})
	require.Error(testInstance, subscribeError)
}
