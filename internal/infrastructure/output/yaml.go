package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/scenepack/internal/application/dto"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// FormatExport writes export results as YAML.
func (f *YAMLFormatter) FormatExport(resp *dto.BatchExportResponse) error {
	return f.encode(resp)
}

// FormatInspect writes the extracted scene as YAML.
func (f *YAMLFormatter) FormatInspect(resp *dto.InspectSceneResponse) error {
	return f.encode(resp)
}

// FormatVerify writes a verification report as YAML.
func (f *YAMLFormatter) FormatVerify(report *dto.VerificationReport) error {
	return f.encode(report)
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
