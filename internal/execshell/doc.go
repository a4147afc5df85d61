// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the abstractions used to run
// git in a testable manner. Git is the only executable this project
// shells out to.
package execshell
