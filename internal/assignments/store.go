// Package assignments persists the durable ledger mapping repository
// branches to their assigned identity colors.
package assignments

import (
	"context"
	"fmt"

	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

const assignmentKeyTemplateConstant = "colors:%s:%s"

// Store persists branch color assignments across sessions. Implementations
// must treat deletion of an absent assignment as a no-op.
type Store interface {
	Get(executionContext context.Context, repositoryRoot string, branchName string) (palette.Color, bool, error)
	Put(executionContext context.Context, repositoryRoot string, branchName string, assignedColor palette.Color) error
	Delete(executionContext context.Context, repositoryRoot string, branchName string) error
}

// AssignmentKey renders the canonical ledger key for a repository branch.
func AssignmentKey(repositoryRoot string, branchName string) string {
	return fmt.Sprintf(assignmentKeyTemplateConstant, repositoryRoot, branchName)
}
