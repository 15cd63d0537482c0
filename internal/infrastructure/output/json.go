package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/scenepack/internal/application/dto"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// FormatExport writes export results as JSON.
func (f *JSONFormatter) FormatExport(resp *dto.BatchExportResponse) error {
	return f.encode(resp)
}

// FormatInspect writes the extracted scene as JSON.
func (f *JSONFormatter) FormatInspect(resp *dto.InspectSceneResponse) error {
	return f.encode(resp)
}

// FormatVerify writes a verification report as JSON.
func (f *JSONFormatter) FormatVerify(report *dto.VerificationReport) error {
	return f.encode(report)
}

func (f *JSONFormatter) encode(v any) error {
	enc := json.NewEncoder(f.writer)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
