package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/domain/ir"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

const ruleWidth = 72

// TableFormatter formats results as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) rule() string {
	return f.colorize(strings.Repeat("─", ruleWidth), colorGray)
}

// FormatExport writes one block per exported scene.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatExport(resp *dto.BatchExportResponse) error {
	for _, r := range resp.Results {
		fmt.Fprintln(f.writer, f.rule())
		fmt.Fprintf(f.writer, "%s %s\n", f.colorize("✓", colorGreen), f.colorize(r.Scene, colorBold))
		fmt.Fprintf(f.writer, "  Document: %s (%s)\n", r.DocumentPath, humanize.Bytes(uint64(max(r.Sizes.Document, 0))))
		fmt.Fprintf(f.writer, "  Archive:  %s (%s)\n", r.ArchivePath, humanize.Bytes(uint64(max(r.Sizes.Archive, 0))))
		fmt.Fprintf(f.writer, "  Binary:   %s compiled, %s optimized, %d bytes of source\n",
			humanize.Bytes(uint64(max(r.Sizes.Binary, 0))),
			humanize.Bytes(uint64(max(r.Sizes.Optimized, 0))),
			r.Sizes.Source)
		f.formatSummary(r.Summary)

		if len(r.Stages) > 0 {
			parts := make([]string, 0, len(r.Stages))
			for _, s := range r.Stages {
				parts = append(parts, fmt.Sprintf("%s %s", s.Name, s.Duration.Round(time.Millisecond)))
			}
			fmt.Fprintf(f.writer, "  Stages:   %s\n", f.colorize(strings.Join(parts, ", "), colorGray))
		}
		if r.ScratchDir != "" {
			fmt.Fprintf(f.writer, "  Scratch:  %s\n", r.ScratchDir)
		}
		if r.Verification != nil {
			fmt.Fprintf(f.writer, "  Verified: %d frames, %d rects, %d static polylines\n",
				r.Verification.Frames, r.Verification.Rects, r.Verification.Polylines)
		}
		f.formatDiagnostics(r.Diagnostics)
	}
	if len(resp.Results) > 0 {
		fmt.Fprintln(f.writer, f.rule())
	}
	return nil
}

// FormatInspect writes the extracted entities, assets and diagnostics.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatInspect(resp *dto.InspectSceneResponse) error {
	s := resp.Scene
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Scene: %s (%dx%d)\n", f.colorize(s.Name, colorBold), s.Canvas.Width, s.Canvas.Height)
	f.formatSummary(resp.Summary)
	fmt.Fprintln(f.writer, f.rule())

	for _, e := range s.Entities {
		slot := "-"
		if e.Slot >= 0 {
			slot = fmt.Sprintf("%d", e.Slot)
		}
		fmt.Fprintf(f.writer, "%s %-12s slot %-3s %s\n",
			f.colorize("•", colorCyan), e.Kind(), slot, e.Name)
		if e.Kind() != ir.KindStrokeGroup {
			fmt.Fprintf(f.writer, "    at (%g, %g) size (%g, %g) color #%02x%02x%02x a=%g\n",
				e.Transform.X, e.Transform.Y, e.Transform.ScaleX, e.Transform.ScaleY,
				e.Color.R, e.Color.G, e.Color.B, e.Color.A)
		}
		if e.Text != nil {
			fmt.Fprintf(f.writer, "    text %q size %g\n", e.Text.Label, e.Text.FontSize)
		}
		if e.Strokes != nil {
			fmt.Fprintf(f.writer, "    %d strokes from %s\n", len(e.Strokes.Items), e.Strokes.DataBlock)
		}
		for _, p := range e.Properties {
			if p.Type == ir.PropertyString {
				fmt.Fprintf(f.writer, "    property %s = %q\n", p.Name, p.String)
			} else {
				fmt.Fprintf(f.writer, "    property %s = %g\n", p.Name, p.Number)
			}
		}
		for _, sc := range e.Scripts {
			lines := strings.Count(strings.TrimRight(sc.Source, "\n"), "\n") + 1
			fmt.Fprintf(f.writer, "    script slot %d (%d lines)\n", sc.Slot, lines)
		}
	}

	if len(s.Assets) > 0 {
		fmt.Fprintln(f.writer, f.rule())
		for _, a := range s.Assets {
			fmt.Fprintf(f.writer, "asset %s: %d points, %d refs\n", a.Name, a.PointCount(), a.Refs)
		}
	}

	f.formatDiagnostics(resp.Diagnostics)
	fmt.Fprintln(f.writer, f.rule())
	return nil
}

// FormatVerify writes a verification report.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatVerify(report *dto.VerificationReport) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "%s ran %d frames\n", f.colorize("✓", colorGreen), report.Frames)
	fmt.Fprintf(f.writer, "  Rects in last frame: %d\n", report.Rects)
	fmt.Fprintf(f.writer, "  Static polylines:    %d\n", report.Polylines)

	if len(report.Calls) > 0 {
		fmt.Fprintln(f.writer, "  Host calls:")
		for _, name := range slices.Sorted(maps.Keys(report.Calls)) {
			fmt.Fprintf(f.writer, "    %-18s %d\n", name, report.Calls[name])
		}
	}
	if len(report.Texts) > 0 {
		fmt.Fprintln(f.writer, "  Texts:")
		for _, id := range slices.Sorted(maps.Keys(report.Texts)) {
			fmt.Fprintf(f.writer, "    %-18s %q\n", id, report.Texts[id])
		}
	}
	if report.Snapshot != "" {
		fmt.Fprintf(f.writer, "  Snapshot: %s\n", report.Snapshot)
	}
	fmt.Fprintln(f.writer, f.rule())
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(s dto.SceneSummary) {
	fmt.Fprintf(f.writer, "  Entities: %d rects, %d texts, %d stroke groups (%d slots, %d assets)\n",
		s.RectSprites, s.TextLabels, s.StrokeGroups, s.Slots, s.Assets)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatDiagnostics(diags []ir.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(f.writer, "  %s:\n", f.colorize("Diagnostics", colorBold))
	for _, d := range diags {
		color := colorGray
		switch d.Severity {
		case ir.SeverityWarning:
			color = colorYellow
		case ir.SeverityError:
			color = colorRed
		}
		fmt.Fprintf(f.writer, "    %s\n", f.colorize(d.String(), color))
	}
}
