// Package status reports the color state of every discovered repository.
//
// Each repository row carries the current branch, the stored color when one
// exists, and a classification: colored, uncolored, default, or detached.
package status
