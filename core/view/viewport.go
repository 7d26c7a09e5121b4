// Package view maps world coordinates of the dataset and the decision
// boundary onto window pixels. It never draws; renderers consume the
// Frame values it composes.
package view

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"percviz/core/ml"
)

var ErrBadViewport = errors.New("view: invalid viewport")

// Viewport is an affine world-to-screen transform with a y-flip:
//
//	sx = floor(x*ScaleX + OffsetX)
//	sy = floor(-y*ScaleY + OffsetY)
type Viewport struct {
	Width   int
	Height  int
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

type Pixel struct {
	X int
	Y int
}

// NewViewport stretches the world square [-r, r] x [-r, r] over the window.
func NewViewport(width, height int, r float64) (Viewport, error) {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return Viewport{}, errors.Wrapf(ErrBadViewport, "world range %v", r)
	}
	vp := Viewport{
		Width:   width,
		Height:  height,
		ScaleX:  float64(width) / (2 * r),
		ScaleY:  float64(height) / (2 * r),
		OffsetX: float64(width) / 2,
		OffsetY: float64(height) / 2,
	}
	return vp, vp.Validate()
}

// NewScaledViewport puts the world origin at the window center with a
// uniform number of pixels per world unit.
func NewScaledViewport(width, height int, scale float64) (Viewport, error) {
	vp := Viewport{
		Width:   width,
		Height:  height,
		ScaleX:  scale,
		ScaleY:  scale,
		OffsetX: float64(width) / 2,
		OffsetY: float64(height) / 2,
	}
	return vp, vp.Validate()
}

// FitViewport picks a uniform scale so that every point of ds lands inside
// the window, leaving margin pixels free on each side.
func FitViewport(width, height int, ds *ml.Dataset, margin int) (Viewport, error) {
	if ds.Len() == 0 {
		return Viewport{}, ml.ErrEmptyDataset
	}
	if 2*margin >= width || 2*margin >= height || margin < 0 {
		return Viewport{}, errors.Wrapf(ErrBadViewport, "margin %d for %dx%d window", margin, width, height)
	}

	xs := make([]float64, ds.Len())
	ys := make([]float64, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		p := ds.At(i)
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	spanX := math.Max(maxX-minX, 1e-9)
	spanY := math.Max(maxY-minY, 1e-9)
	scale := math.Min(float64(width-2*margin)/spanX, float64(height-2*margin)/spanY)

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	vp := Viewport{
		Width:   width,
		Height:  height,
		ScaleX:  scale,
		ScaleY:  scale,
		OffsetX: float64(width)/2 - cx*scale,
		OffsetY: float64(height)/2 + cy*scale,
	}
	return vp, vp.Validate()
}

func (vp Viewport) Validate() error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return errors.Wrapf(ErrBadViewport, "size %dx%d", vp.Width, vp.Height)
	}
	for _, f := range []float64{vp.ScaleX, vp.ScaleY, vp.OffsetX, vp.OffsetY} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Wrapf(ErrBadViewport, "non-finite parameter in %+v", vp)
		}
	}
	if vp.ScaleX <= 0 || vp.ScaleY <= 0 {
		return errors.Wrapf(ErrBadViewport, "scale %vx%v", vp.ScaleX, vp.ScaleY)
	}
	return nil
}

// ToScreen maps a world point to the pixel containing it. ok is false when
// the pixel falls outside the window or the coordinates are not finite.
func (vp Viewport) ToScreen(x, y float64) (Pixel, bool) {
	sx := math.Floor(x*vp.ScaleX + vp.OffsetX)
	sy := math.Floor(-y*vp.ScaleY + vp.OffsetY)
	if math.IsNaN(sx) || math.IsNaN(sy) {
		return Pixel{}, false
	}
	if sx < 0 || sy < 0 || sx >= float64(vp.Width) || sy >= float64(vp.Height) {
		return Pixel{}, false
	}
	return Pixel{X: int(sx), Y: int(sy)}, true
}

// ToWorld returns the world coordinates of the top-left corner of a pixel.
func (vp Viewport) ToWorld(p Pixel) (float64, float64) {
	x := (float64(p.X) - vp.OffsetX) / vp.ScaleX
	y := -(float64(p.Y) - vp.OffsetY) / vp.ScaleY
	return x, y
}

// ColumnX is the world x of the center of screen column sx.
func (vp Viewport) ColumnX(sx int) float64 {
	return (float64(sx) + 0.5 - vp.OffsetX) / vp.ScaleX
}
