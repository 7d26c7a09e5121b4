package view

import (
	"percviz/core/ml"
)

type PointPixel struct {
	Pixel
	Label ml.Label
}

// Frame is everything a renderer needs to draw one epoch.
type Frame struct {
	Width       int
	Height      int
	Result      ml.EpochResult
	Weights     ml.Weights
	Points      []PointPixel
	Line        []Pixel
	HasBoundary bool
	Boundary    ml.Line
}

// Compose maps ds and the boundary line onto the viewport. Points outside
// the window are dropped. The line is sampled once per screen column and
// only in-window rows are kept; hasLine == false yields a frame without a
// boundary.
func Compose(vp Viewport, ds *ml.Dataset, res ml.EpochResult, w ml.Weights, line ml.Line, hasLine bool) Frame {
	f := Frame{
		Width:   vp.Width,
		Height:  vp.Height,
		Result:  res,
		Weights: w,
		Points:  make([]PointPixel, 0, ds.Len()),
	}
	for i := 0; i < ds.Len(); i++ {
		p := ds.At(i)
		if px, ok := vp.ToScreen(p.X, p.Y); ok {
			f.Points = append(f.Points, PointPixel{Pixel: px, Label: p.Label})
		}
	}
	if !hasLine {
		return f
	}

	f.HasBoundary = true
	f.Boundary = line
	for sx := 0; sx < vp.Width; sx++ {
		x := vp.ColumnX(sx)
		if px, ok := vp.ToScreen(x, line.At(x)); ok {
			f.Line = append(f.Line, Pixel{X: sx, Y: px.Y})
		}
	}
	return f
}
