// Package workspace locates git repositories for coloring sessions.
//
// It provides RootNormalizer for cleaning configured root paths, Discoverer
// for finding work trees beneath those roots, and Resolver for mapping an
// active document path onto the repository that owns it.
package workspace
