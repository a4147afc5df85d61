// Package colorize keeps branch identity colors coordinated with the
// managed window chrome keys of a shared settings document.
//
// The service assigns every non-default branch a stable color, persists the
// assignment in the ledger, and projects an active/inactive palette into the
// settings document. Default branches and detached heads keep neutral chrome
// and never receive assignments.
package colorize
