package gitrepo

import "strings"

const (
	detachedHeadDescriptionConstant = "detached HEAD"
)

// BranchReference identifies the checked-out head state of a repository.
// A reference is either a named branch or a detached head; a named branch
// never carries an empty name. The zero value describes a detached head.
type BranchReference struct {
	branchName string
	named      bool
}

// NamedBranch builds a reference to the branch with the provided name.
// Surrounding whitespace is trimmed; a blank name yields a detached
// reference so callers can never observe a named branch without a name.
func NamedBranch(branchName string) BranchReference {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return DetachedHead()
	}
	return BranchReference{branchName: trimmedBranchName, named: true}
}

// DetachedHead builds a reference describing a detached checkout.
func DetachedHead() BranchReference {
	return BranchReference{}
}

// Name returns the branch name. Detached references report an empty name.
func (reference BranchReference) Name() string {
	if !reference.named {
		return ""
	}
	return reference.branchName
}

// IsDetached reports whether the reference describes a detached checkout.
func (reference BranchReference) IsDetached() bool {
	return !reference.named
}

// Equal reports whether both references identify the same head state.
// Every detached reference equals every other detached reference and no
// named reference.
func (reference BranchReference) Equal(other BranchReference) bool {
	if reference.named != other.named {
		return false
	}
	if !reference.named {
		return true
	}
	return reference.branchName == other.branchName
}

// String describes the reference for logs and user-facing messages.
func (reference BranchReference) String() string {
	if !reference.named {
		return detachedHeadDescriptionConstant
	}
	return reference.branchName
}
