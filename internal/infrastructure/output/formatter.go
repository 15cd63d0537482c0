// Package output renders command results for the terminal or for machines.
package output

import (
	"github.com/reglet-dev/scenepack/internal/application/dto"
)

// Formatter renders the result of each command.
type Formatter interface {
	FormatExport(resp *dto.BatchExportResponse) error
	FormatInspect(resp *dto.InspectSceneResponse) error
	FormatVerify(report *dto.VerificationReport) error
}

// Options configures formatter creation.
type Options struct {
	// Indent pretty-prints JSON.
	Indent bool
	// Color enables ANSI colors in table output.
	Color bool
}
