// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes BranchReference, a tagged head state that distinguishes named
// branches from detached checkouts, and RepositoryManager for reading that
// state through git plumbing commands.
package gitrepo
