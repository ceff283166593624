package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes per the orchestration contract: shell-level branching keys off
// PASS / WARN / CRITICAL.
const (
	ExitPass     = 0 // All checks passed
	ExitWarn     = 1 // Passed with warnings
	ExitCritical = 2 // Blocking failure or runtime error
)

// ValidationFailureError indicates that validation ran successfully but the
// document did not fully pass. It carries the worst severity so main can
// pick the exit code.
type ValidationFailureError struct {
	ExitCode int
	Message  string
}

func (e *ValidationFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var vfe *ValidationFailureError
		if errors.As(err, &vfe) {
			os.Exit(vfe.ExitCode)
		}

		// All other errors are configuration or runtime errors.
		os.Exit(ExitCritical)
	}
}
