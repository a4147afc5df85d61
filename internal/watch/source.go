package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	gitMetadataDirectoryNameConstant     = ".git"
	headReferenceFileNameConstant        = "HEAD"
	notificationStreamErrorLogMessage    = "repository notification stream error"
	notificationRepositoryRootFieldName  = "repository_root"
	notificationEventOperationFieldName  = "operation"
	headReferenceChangedDebugLogMessage  = "HEAD reference changed"
	notificationStreamClosedDebugMessage = "repository notification stream closed"
)

// FilesystemNotificationSource emits branch-change notifications by watching a
// repository's .git directory for updates to the HEAD reference.
type FilesystemNotificationSource struct {
	logger *zap.Logger
}

// NewFilesystemNotificationSource builds a notification source that logs
// through the provided logger. A nil logger falls back to a no-op logger.
func NewFilesystemNotificationSource(logger *zap.Logger) *FilesystemNotificationSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemNotificationSource{logger: logger}
}

// Subscribe watches <repositoryRoot>/.git and invokes notify for every HEAD
// create, write, or rename until the context ends or the returned stop
// function runs.
func (source *FilesystemNotificationSource) Subscribe(executionContext context.Context, repositoryRoot string, notify func()) (func(), error) {
	filesystemWatcher, watcherCreationError := fsnotify.NewWatcher()
	if watcherCreationError != nil {
		return nil, watcherCreationError
	}

	gitMetadataPath := filepath.Join(repositoryRoot, gitMetadataDirectoryNameConstant)
	if watchRegistrationError := filesystemWatcher.Add(gitMetadataPath); watchRegistrationError != nil {
		_ = filesystemWatcher.Close()
		return nil, watchRegistrationError
	}

	go source.observe(executionContext, repositoryRoot, filesystemWatcher, notify)

	stopSubscription := func() {
		_ = filesystemWatcher.Close()
	}
	return stopSubscription, nil
}

func (source *FilesystemNotificationSource) observe(executionContext context.Context, repositoryRoot string, filesystemWatcher *fsnotify.Watcher, notify func()) {
	for {
		select {
		case <-executionContext.Done():
			_ = filesystemWatcher.Close()
			return
		case notificationEvent, streamOpen := <-filesystemWatcher.Events:
			if !streamOpen {
				source.logger.Debug(notificationStreamClosedDebugMessage,
					zap.String(notificationRepositoryRootFieldName, repositoryRoot))
				return
			}
			if !describesHeadUpdate(notificationEvent) {
				continue
			}
			source.logger.Debug(headReferenceChangedDebugLogMessage,
				zap.String(notificationRepositoryRootFieldName, repositoryRoot),
				zap.String(notificationEventOperationFieldName, notificationEvent.Op.String()))
			notify()
		case notificationError, streamOpen := <-filesystemWatcher.Errors:
			if !streamOpen {
				return
			}
			source.logger.Warn(notificationStreamErrorLogMessage,
				zap.String(notificationRepositoryRootFieldName, repositoryRoot),
				zap.Error(notificationError))
		}
	}
}

// describesHeadUpdate reports whether the event rewrites the HEAD reference.
// Git replaces HEAD through a rename on checkout, so create and rename count
// alongside plain writes.
func describesHeadUpdate(notificationEvent fsnotify.Event) bool {
	if filepath.Base(notificationEvent.Name) != headReferenceFileNameConstant {
		return false
	}
	return notificationEvent.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
