package ir

import (
	"context"
	"fmt"
	"log/slog"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes reported by extraction and generation.
const (
	CodeHidden               = "hidden"
	CodeFiltered             = "filtered"
	CodeUnsupportedType      = "unsupported-type"
	CodeMalformedGeometry    = "malformed-geometry"
	CodeReservedProperty     = "reserved-property"
	CodeUnsupportedProperty  = "unsupported-property"
	CodeScriptSlotOverflow   = "script-slot-overflow"
	CodeMissingText          = "missing-text"
	CodeMissingMaterial      = "missing-material"
	CodeMissingDataBlock     = "missing-data-block"
	CodeStrokeScriptsIgnored = "stroke-scripts-ignored"
	CodeUnresolvedReference  = "unresolved-reference"
	CodeDeclarationCollision = "declaration-collision"
	CodeAssetAlias           = "asset-alias"
)

// Diagnostic is a non-fatal observation about the scene.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Stage    string   `json:"stage" yaml:"stage"`
	Object   string   `json:"object,omitempty" yaml:"object,omitempty"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Object == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Object, d.Message)
}

// Diagnostics collects diagnostics for one stage. The zero value is ready to use.
type Diagnostics struct {
	Stage string
	items []Diagnostic
}

// NewDiagnostics creates a collector for the named stage.
func NewDiagnostics(stage string) *Diagnostics {
	return &Diagnostics{Stage: stage}
}

// Add records a diagnostic.
func (d *Diagnostics) Add(sev Severity, object, code, format string, args ...any) {
	d.items = append(d.items, Diagnostic{
		Severity: sev,
		Stage:    d.Stage,
		Object:   object,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Infof records an info diagnostic.
func (d *Diagnostics) Infof(object, code, format string, args ...any) {
	d.Add(SeverityInfo, object, code, format, args...)
}

// Warnf records a warning diagnostic.
func (d *Diagnostics) Warnf(object, code, format string, args ...any) {
	d.Add(SeverityWarning, object, code, format, args...)
}

// Errorf records an error diagnostic.
func (d *Diagnostics) Errorf(object, code, format string, args ...any) {
	d.Add(SeverityError, object, code, format, args...)
}

// Items returns the recorded diagnostics in insertion order.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// Len returns the number of diagnostics recorded.
func (d *Diagnostics) Len() int {
	return len(d.items)
}

// Merge appends every diagnostic of other.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// Count returns the number of diagnostics with the given severity.
func (d *Diagnostics) Count(sev Severity) int {
	n := 0
	for _, item := range d.items {
		if item.Severity == sev {
			n++
		}
	}
	return n
}

// ByCode returns every diagnostic carrying code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Code == code {
			out = append(out, item)
		}
	}
	return out
}

// Log writes every diagnostic to logger at a level matching its severity.
func (d *Diagnostics) Log(logger *slog.Logger) {
	for _, item := range d.items {
		level := slog.LevelDebug
		switch item.Severity {
		case SeverityWarning:
			level = slog.LevelWarn
		case SeverityError:
			level = slog.LevelError
		}
		logger.Log(context.Background(), level, item.Message,
			"stage", item.Stage,
			"object", item.Object,
			"code", item.Code)
	}
}
