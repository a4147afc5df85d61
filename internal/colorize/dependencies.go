package colorize

import (
	"context"

	"github.com/kalifudge401/worktree-rainbow/internal/palette"
	"github.com/kalifudge401/worktree-rainbow/internal/settings"
)

// AssignmentStore describes the persisted branch color ledger the service reads and writes.
type AssignmentStore interface {
	Get(executionContext context.Context, repositoryRoot string, branchName string) (palette.Color, bool, error)
	Put(executionContext context.Context, repositoryRoot string, branchName string, identityColor palette.Color) error
	Delete(executionContext context.Context, repositoryRoot string, branchName string) error
}

// SettingsMerger describes the settings document surface the service projects palettes into.
type SettingsMerger interface {
	ApplyPalette(executionContext context.Context, workspacePalette settings.WorkspacePalette) error
	ClearManaged(executionContext context.Context) error
}

// ColorGenerator describes the source of fresh branch identity colors.
type ColorGenerator interface {
	Generate() palette.Color
}

// StatusReporter receives human readable progress messages.
type StatusReporter interface {
	Info(message string)
	Warn(message string)
	Error(message string)
}

type noopStatusReporter struct{}

func (noopStatusReporter) Info(message string)  {}
func (noopStatusReporter) Warn(message string)  {}
func (noopStatusReporter) Error(message string) {}
