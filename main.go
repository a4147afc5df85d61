package main

import (
	"fmt"
	"os"

	"github.com/kalifudge401/worktree-rainbow/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the worktree-rainbow command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
