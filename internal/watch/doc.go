// Package watch keeps repository chrome synchronized with branch changes.
//
// A Watcher runs one ordered work queue per repository, fed by filesystem
// notifications on the repository's HEAD reference and drained by a single
// worker. Duplicate notifications for the branch already enqueued are
// dropped; failures are logged and never block later work.
package watch
