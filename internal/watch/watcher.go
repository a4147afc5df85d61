package watch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
)

const (
	defaultQueueCapacityConstant = 16

	subscriptionFailedLogMessageConstant  = "failed to subscribe to repository notifications"
	branchReadFailedLogMessageConstant    = "failed to read current branch"
	synchronizationFailedLogMessage       = "failed to synchronize repository chrome"
	duplicateNotificationDebugLogMessage  = "dropped duplicate branch notification"
	branchEnqueuedDebugLogMessageConstant = "enqueued branch synchronization"
	watcherStartedLogMessageConstant      = "watching repositories"
	watcherStoppedLogMessageConstant      = "stopped watching repositories"
	repositoryRootLogFieldNameConstant    = "repository_root"
	branchNameLogFieldNameConstant        = "branch"
	repositoryCountLogFieldNameConstant   = "repository_count"
	branchReaderRequiredMessageConstant   = "branch reader not configured"
	synchronizerRequiredMessageConstant   = "synchronizer not configured"
	notificationSourceRequiredMessage     = "notification source not configured"
	watchedRepositoriesRequiredMessage    = "no repositories configured to watch"
)

var (
	// ErrBranchReaderNotConfigured indicates the watcher was built without a branch reader.
	ErrBranchReaderNotConfigured = errors.New(branchReaderRequiredMessageConstant)
	// ErrSynchronizerNotConfigured indicates the watcher was built without a synchronizer.
	ErrSynchronizerNotConfigured = errors.New(synchronizerRequiredMessageConstant)
	// ErrNotificationSourceNotConfigured indicates the watcher was built without a notification source.
	ErrNotificationSourceNotConfigured = errors.New(notificationSourceRequiredMessage)
	// ErrNoRepositoriesConfigured indicates the watcher was built with an empty repository list.
	ErrNoRepositoriesConfigured = errors.New(watchedRepositoriesRequiredMessage)
)

// BranchEvent pairs a repository root with the branch reference observed there.
type BranchEvent struct {
	RepositoryRoot string
	Branch         gitrepo.BranchReference
}

// Dependencies bundles the collaborators a Watcher requires.
type Dependencies struct {
	Repositories       []string
	BranchReader       BranchReader
	Synchronizer       Synchronizer
	NotificationSource NotificationSource
	Logger             *zap.Logger
	QueueCapacity      int
}

// Watcher keeps every configured repository's chrome aligned with its current
// branch. Each repository owns an ordered bounded queue drained by a single
// worker, so synchronizations for one repository never interleave.
type Watcher struct {
	repositories       []string
	branchReader       BranchReader
	synchronizer       Synchronizer
	notificationSource NotificationSource
	logger             *zap.Logger
	queueCapacity      int
}

// NewWatcher validates the provided dependencies and builds a Watcher.
func NewWatcher(dependencies Dependencies) (*Watcher, error) {
	if dependencies.BranchReader == nil {
		return nil, ErrBranchReaderNotConfigured
	}
	if dependencies.Synchronizer == nil {
		return nil, ErrSynchronizerNotConfigured
	}
	if dependencies.NotificationSource == nil {
		return nil, ErrNotificationSourceNotConfigured
	}
	if len(dependencies.Repositories) == 0 {
		return nil, ErrNoRepositoriesConfigured
	}

	watchedRepositories := make([]string, len(dependencies.Repositories))
	copy(watchedRepositories, dependencies.Repositories)

	watcherLogger := dependencies.Logger
	if watcherLogger == nil {
		watcherLogger = zap.NewNop()
	}

	queueCapacity := dependencies.QueueCapacity
	if queueCapacity <= 0 {
		queueCapacity = defaultQueueCapacityConstant
	}

	return &Watcher{
		repositories:       watchedRepositories,
		branchReader:       dependencies.BranchReader,
		synchronizer:       dependencies.Synchronizer,
		notificationSource: dependencies.NotificationSource,
		logger:             watcherLogger,
		queueCapacity:      queueCapacity,
	}, nil
}

// Run synchronizes every repository once, subscribes to branch notifications,
// and blocks until the context ends. Pending queue entries are abandoned on
// shutdown.
func (watcher *Watcher) Run(executionContext context.Context) error {
	watcher.logger.Info(watcherStartedLogMessageConstant,
		zap.Int(repositoryCountLogFieldNameConstant, len(watcher.repositories)))

	var workerGroup sync.WaitGroup
	stopFunctions := make([]func(), 0, len(watcher.repositories))

	for _, repositoryRoot := range watcher.repositories {
		pipeline := watcher.newPipeline(repositoryRoot)

		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			pipeline.drainQueue(executionContext)
		}()

		pipeline.enqueueCurrentBranch(executionContext)

		stopSubscription, subscriptionError := watcher.notificationSource.Subscribe(executionContext, repositoryRoot, func() {
			pipeline.enqueueCurrentBranch(executionContext)
		})
		if subscriptionError != nil {
			watcher.logger.Warn(subscriptionFailedLogMessageConstant,
				zap.String(repositoryRootLogFieldNameConstant, repositoryRoot),
				zap.Error(subscriptionError))
			continue
		}
		stopFunctions = append(stopFunctions, stopSubscription)
	}

	<-executionContext.Done()

	for _, stopSubscription := range stopFunctions {
		stopSubscription()
	}
	workerGroup.Wait()

	watcher.logger.Info(watcherStoppedLogMessageConstant)
	return nil
}

// repositoryPipeline owns the ordered queue and dedupe state for one repository.
type repositoryPipeline struct {
	watcher           *Watcher
	repositoryRoot    string
	taskQueue         chan BranchEvent
	enqueueGuard      sync.Mutex
	lastEnqueued      gitrepo.BranchReference
	lastEnqueuedKnown bool
}

func (watcher *Watcher) newPipeline(repositoryRoot string) *repositoryPipeline {
	return &repositoryPipeline{
		watcher:        watcher,
		repositoryRoot: repositoryRoot,
		taskQueue:      make(chan BranchEvent, watcher.queueCapacity),
	}
}

// enqueueCurrentBranch reads the repository's branch and queues a
// synchronization for it. The branch is compared against the most recently
// enqueued reference, not the last applied one, so a rapid A-to-B-to-A switch
// still queues all three transitions while redundant notifications for the
// same reference collapse. The queue send blocks when the queue is full.
func (pipeline *repositoryPipeline) enqueueCurrentBranch(executionContext context.Context) {
	branchReference, branchReadError := pipeline.watcher.branchReader.CurrentBranch(executionContext, pipeline.repositoryRoot)
	if branchReadError != nil {
		pipeline.watcher.logger.Warn(branchReadFailedLogMessageConstant,
			zap.String(repositoryRootLogFieldNameConstant, pipeline.repositoryRoot),
			zap.Error(branchReadError))
		return
	}

	pipeline.enqueueGuard.Lock()
	if pipeline.lastEnqueuedKnown && pipeline.lastEnqueued.Equal(branchReference) {
		pipeline.enqueueGuard.Unlock()
		pipeline.watcher.logger.Debug(duplicateNotificationDebugLogMessage,
			zap.String(repositoryRootLogFieldNameConstant, pipeline.repositoryRoot),
			zap.String(branchNameLogFieldNameConstant, branchReference.String()))
		return
	}
	pipeline.lastEnqueued = branchReference
	pipeline.lastEnqueuedKnown = true
	pipeline.enqueueGuard.Unlock()

	branchEvent := BranchEvent{RepositoryRoot: pipeline.repositoryRoot, Branch: branchReference}
	select {
	case pipeline.taskQueue <- branchEvent:
		pipeline.watcher.logger.Debug(branchEnqueuedDebugLogMessageConstant,
			zap.String(repositoryRootLogFieldNameConstant, pipeline.repositoryRoot),
			zap.String(branchNameLogFieldNameConstant, branchReference.String()))
	case <-executionContext.Done():
	}
}

// drainQueue applies queued branch events in order. A failing synchronization
// is logged and the worker moves on to the next event.
func (pipeline *repositoryPipeline) drainQueue(executionContext context.Context) {
	for {
		select {
		case <-executionContext.Done():
			return
		case branchEvent := <-pipeline.taskQueue:
			synchronizationError := pipeline.watcher.synchronizer.Synchronize(executionContext, branchEvent.RepositoryRoot, branchEvent.Branch)
			if synchronizationError != nil {
				pipeline.watcher.logger.Warn(synchronizationFailedLogMessage,
					zap.String(repositoryRootLogFieldNameConstant, branchEvent.RepositoryRoot),
					zap.String(branchNameLogFieldNameConstant, branchEvent.Branch.String()),
					zap.Error(synchronizationError))
			}
		}
	}
}
