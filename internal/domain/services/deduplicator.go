package services

import (
	"fmt"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/reglet-dev/scenepack/internal/domain/values"
)

// StageDedup names the deduplication stage in diagnostics.
const StageDedup = "dedup"

// strokeWidthFactor converts mean pressure times line width into pixels.
const strokeWidthFactor = 0.05

// AssetDeduplicator builds the shared Asset table for StrokeGroup entities.
// Geometry is transcribed the first time a data block is seen; later entities
// referencing the same block only receive asset names.
type AssetDeduplicator struct{}

// NewAssetDeduplicator creates a deduplicator.
func NewAssetDeduplicator() *AssetDeduplicator {
	return &AssetDeduplicator{}
}

// Deduplicate fills s.Assets in first-seen order and annotates every stroke of
// every StrokeGroup entity with its asset name and derived width.
func (d *AssetDeduplicator) Deduplicate(s *ir.Scene) *ir.Diagnostics {
	diags := ir.NewDiagnostics(StageDedup)
	s.Assets = nil

	seen := make(map[string]string)
	for _, e := range s.Entities {
		if e.Kind() != ir.KindStrokeGroup || e.Strokes == nil {
			continue
		}

		key := values.NewIdentifier(e.Strokes.DataBlock).String()
		if first, ok := seen[key]; ok && first != e.Strokes.DataBlock {
			diags.Infof(e.Name, ir.CodeAssetAlias,
				"data block %q shares normalized name %q with %q", e.Strokes.DataBlock, key, first)
		} else if !ok {
			seen[key] = e.Strokes.DataBlock
		}

		for i := range e.Strokes.Items {
			stroke := &e.Strokes.Items[i]
			stroke.Asset = AssetName(key, i)
			stroke.Width = strokeWidth(stroke)

			if asset, ok := s.Asset(stroke.Asset); ok {
				asset.Refs++
				continue
			}

			s.Assets = append(s.Assets, &ir.Asset{
				Name:   stroke.Asset,
				Points: transcribe(stroke.Points, e.Strokes.OriginX, e.Strokes.OriginZ),
				Refs:   1,
			})
		}
	}

	return diags
}

// AssetName returns the declaration name of stroke index i of a data block.
func AssetName(block string, i int) string {
	return fmt.Sprintf("gp_%s_%d", block, i)
}

func transcribe(points []ir.SourcePoint, originX, originZ float64) []float32 {
	out := make([]float32, 0, 2*len(points))
	for _, p := range points {
		x := p.X*Scale + originX
		y := -(p.Z*Scale + originZ)
		out = append(out, float32(x), float32(y))
	}
	return out
}

func strokeWidth(s *ir.Stroke) float64 {
	if len(s.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s.Points {
		sum += p.Pressure
	}
	return sum / float64(len(s.Points)) * s.LineWidth * strokeWidthFactor
}
