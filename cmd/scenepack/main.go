// Package main provides the scenepack CLI, which compiles authored scenes
// into standalone WebAssembly documents.
package main

import (
	"errors"
	"os"

	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
)

func main() {
	os.Exit(Execute())
}

// exitCode maps a command error to the process exit status. A failing
// external tool passes its own exit code through.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var toolErr *apperrors.ToolchainError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}
	return 1
}
