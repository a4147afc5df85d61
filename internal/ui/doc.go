// Package ui provides helpers for formatting human-readable console output.
//
// StatusReporter carries user-facing status messages for the coloring
// commands, while the console event logger translates git command lifecycle
// events into concise progress lines. Detailed telemetry continues to flow
// through structured loggers.
package ui
