// Package settings reads and rewrites the workspace settings document that
// hosts the managed window chrome customization keys. The document is owned
// by the editor; this package only ever touches the keys it manages and
// carries every other value through unchanged.
package settings
