package wasm

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/reglet-dev/scenepack/internal/infrastructure/wasm/hostfuncs"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// maxSnapshotSide bounds snapshot dimensions.
const maxSnapshotSide = 8192

// RenderSnapshot rasterises the final display list of trace: static
// polylines, then polylines and rects of the last frame, then visible text
// nodes stacked from the top-left corner.
func RenderSnapshot(trace *hostfuncs.Trace) (*image.NRGBA, error) {
	w, h := int(trace.Width), int(trace.Height)
	if w <= 0 || h <= 0 || w > maxSnapshotSide || h > maxSnapshotSide {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over

	for _, p := range trace.Static {
		drawPolyline(z, dst, p)
	}
	for _, p := range trace.Polylines {
		drawPolyline(z, dst, p)
	}
	for _, rc := range trace.Rects {
		z.Reset(w, h)
		x0, y0 := rc.X-rc.W/2, rc.Y-rc.H/2
		z.MoveTo(x0, y0)
		z.LineTo(x0+rc.W, y0)
		z.LineTo(x0+rc.W, y0+rc.H)
		z.LineTo(x0, y0+rc.H)
		z.ClosePath()
		z.Draw(dst, dst.Bounds(), image.NewUniform(rgba(rc.R, rc.G, rc.B, rc.A)), image.Point{})
	}

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: basicfont.Face7x13,
	}
	line := basicfont.Face7x13.Metrics().Height
	dot := fixed.P(4, 0)
	for _, t := range trace.Texts {
		if !t.Visible {
			continue
		}
		dot.Y += line
		drawer.Dot = dot
		drawer.DrawString(t.Text)
	}

	return dst, nil
}

// WriteSnapshot renders trace and writes it to path as PNG.
func WriteSnapshot(path string, trace *hostfuncs.Trace) error {
	img, err := RenderSnapshot(trace)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// drawPolyline fills closed polylines and strokes open ones, one quad per
// segment.
func drawPolyline(z *vector.Rasterizer, dst *image.NRGBA, p hostfuncs.Polyline) {
	n := len(p.Points) / 2
	if n < 2 {
		return
	}
	src := image.NewUniform(rgba(p.R, p.G, p.B, p.A))
	b := dst.Bounds()

	if p.Fill {
		z.Reset(b.Dx(), b.Dy())
		z.MoveTo(p.Points[0], p.Points[1])
		for i := 1; i < n; i++ {
			z.LineTo(p.Points[2*i], p.Points[2*i+1])
		}
		z.ClosePath()
		z.Draw(dst, b, src, image.Point{})
		return
	}

	half := p.Width / 2
	if half < 0.5 {
		half = 0.5
	}
	for i := 1; i < n; i++ {
		ax, ay := p.Points[2*i-2], p.Points[2*i-1]
		bx, by := p.Points[2*i], p.Points[2*i+1]
		dx, dy := bx-ax, by-ay
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half

		z.Reset(b.Dx(), b.Dy())
		z.MoveTo(ax+nx, ay+ny)
		z.LineTo(bx+nx, by+ny)
		z.LineTo(bx-nx, by-ny)
		z.LineTo(ax-nx, ay-ny)
		z.ClosePath()
		z.Draw(dst, b, src, image.Point{})
	}
}

func rgba(r, g, b uint8, a float32) color.NRGBA {
	alpha := math.Round(float64(a) * 255)
	alpha = math.Max(0, math.Min(255, alpha))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}
}
