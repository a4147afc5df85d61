package workspace

import (
	"errors"
	"strings"
)

const noRepositoriesMessageConstant = "no repositories registered"

// ErrNoRepositories indicates resolution was attempted without any registered repositories.
var ErrNoRepositories = errors.New(noRepositoriesMessageConstant)

// Resolver maps an active document path onto the repository that owns it.
// Repositories keep their registration order; the first registered
// repository doubles as the fallback when no path matches.
type Resolver struct {
	repositories []string
}

// NewResolver constructs a Resolver over the provided repositories in
// registration order.
func NewResolver(repositories []string) (*Resolver, error) {
	retainedRepositories := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		trimmedRepository := strings.TrimSpace(repository)
		if len(trimmedRepository) == 0 {
			continue
		}
		retainedRepositories = append(retainedRepositories, trimmedRepository)
	}
	if len(retainedRepositories) == 0 {
		return nil, ErrNoRepositories
	}
	return &Resolver{repositories: retainedRepositories}, nil
}

// Repositories returns the registered repositories in registration order.
func (resolver *Resolver) Repositories() []string {
	repositories := make([]string, len(resolver.repositories))
	copy(repositories, resolver.repositories)
	return repositories
}

// Resolve selects the repository owning activeDocumentPath. The longest
// matching repository wins; a match is boundary aware, so /a owns /a/x.go
// but never /ab/x.go. Earlier registration breaks ties, and a blank or
// unmatched path falls back to the first registered repository.
func (resolver *Resolver) Resolve(activeDocumentPath string) (string, error) {
	if len(resolver.repositories) == 0 {
		return "", ErrNoRepositories
	}

	trimmedDocumentPath := strings.TrimSpace(activeDocumentPath)
	if len(trimmedDocumentPath) == 0 {
		return resolver.repositories[0], nil
	}

	documentComparison := comparisonPath(canonicalizeRootPath(trimmedDocumentPath))
	selectedRepository := ""
	selectedLength := -1
	for _, repository := range resolver.repositories {
		repositoryComparison := comparisonPath(repository)
		if !pathContains(repositoryComparison, documentComparison) {
			continue
		}
		if len(repositoryComparison) > selectedLength {
			selectedRepository = repository
			selectedLength = len(repositoryComparison)
		}
	}

	if len(selectedRepository) == 0 {
		return resolver.repositories[0], nil
	}
	return selectedRepository, nil
}
