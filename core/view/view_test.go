package view

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"percviz/core/ml"
)

func TestNewViewportRangeMapping(t *testing.T) {
	vp, err := NewViewport(800, 600, 10)
	require.NoError(t, err)

	px, ok := vp.ToScreen(0, 0)
	require.True(t, ok)
	assert.Equal(t, Pixel{400, 300}, px)

	px, ok = vp.ToScreen(-10, 10)
	require.True(t, ok)
	assert.Equal(t, Pixel{0, 0}, px)

	px, ok = vp.ToScreen(5, -5)
	require.True(t, ok)
	assert.Equal(t, Pixel{600, 450}, px)

	_, ok = vp.ToScreen(10, 0)
	assert.False(t, ok)
	_, ok = vp.ToScreen(0, -10)
	assert.False(t, ok)
	_, ok = vp.ToScreen(math.NaN(), 0)
	assert.False(t, ok)
	_, ok = vp.ToScreen(math.Inf(1), 0)
	assert.False(t, ok)
}

func TestNewScaledViewport(t *testing.T) {
	vp, err := NewScaledViewport(1200, 800, 40)
	require.NoError(t, err)

	px, ok := vp.ToScreen(1, 1)
	require.True(t, ok)
	assert.Equal(t, Pixel{640, 360}, px)
}

func TestViewportRoundTrip(t *testing.T) {
	vp, err := NewViewport(800, 600, 10)
	require.NoError(t, err)

	for _, p := range []Pixel{{0, 0}, {17, 599}, {400, 300}, {799, 1}} {
		x, y := vp.ToWorld(p)
		// nudge into the pixel to avoid landing on its edge
		back, ok := vp.ToScreen(x+1e-9, y-1e-9)
		require.True(t, ok)
		assert.Equal(t, p, back)
	}
}

func TestViewportValidate(t *testing.T) {
	_, err := NewViewport(0, 600, 10)
	assert.True(t, errors.Is(err, ErrBadViewport))
	_, err = NewViewport(800, 600, 0)
	assert.True(t, errors.Is(err, ErrBadViewport))
	_, err = NewScaledViewport(800, 600, -1)
	assert.True(t, errors.Is(err, ErrBadViewport))
}

func TestFitViewport(t *testing.T) {
	ds, err := ml.NewDataset([]ml.LabeledPoint{
		{X: -3, Y: 20, Label: ml.Label0},
		{X: 7, Y: 0, Label: ml.Label1},
		{X: 2, Y: 40, Label: ml.Label1},
	})
	require.NoError(t, err)

	vp, err := FitViewport(400, 400, ds, 10)
	require.NoError(t, err)
	assert.Equal(t, vp.ScaleX, vp.ScaleY)
	for _, p := range ds.Points() {
		_, ok := vp.ToScreen(p.X, p.Y)
		assert.True(t, ok, "%+v off screen", p)
	}

	_, err = FitViewport(400, 400, nil, 10)
	assert.Equal(t, ml.ErrEmptyDataset, err)
	_, err = FitViewport(400, 400, ds, 200)
	assert.True(t, errors.Is(err, ErrBadViewport))
}

func TestCompose(t *testing.T) {
	vp, err := NewViewport(200, 100, 10)
	require.NoError(t, err)
	ds, err := ml.NewDataset([]ml.LabeledPoint{
		{X: -5, Y: -5, Label: ml.Label0},
		{X: 50, Y: 0, Label: ml.Label1},
		{X: 5, Y: 5, Label: ml.Label1},
	})
	require.NoError(t, err)
	res := ml.EpochResult{Epoch: 3, Misclassified: 1, Total: 3}

	f := Compose(vp, ds, res, ml.DefaultWeights, ml.Line{Slope: 1, Intercept: 0}, true)
	assert.Equal(t, 200, f.Width)
	assert.Equal(t, 100, f.Height)
	assert.Equal(t, res, f.Result)
	require.Len(t, f.Points, 2)
	assert.Equal(t, PointPixel{Pixel{50, 75}, ml.Label0}, f.Points[0])
	assert.Equal(t, PointPixel{Pixel{150, 25}, ml.Label1}, f.Points[1])

	assert.True(t, f.HasBoundary)
	require.Len(t, f.Line, 200)
	for i, p := range f.Line {
		assert.Equal(t, i, p.X)
		assert.True(t, p.Y >= 0 && p.Y < 100)
	}

	// steep line leaves the window for most columns
	f = Compose(vp, ds, res, ml.DefaultWeights, ml.Line{Slope: 10, Intercept: 0}, true)
	assert.True(t, len(f.Line) > 0 && len(f.Line) < 200)

	f = Compose(vp, ds, res, ml.DefaultWeights, ml.Line{}, false)
	assert.False(t, f.HasBoundary)
	assert.Empty(t, f.Line)
	assert.Len(t, f.Points, 2)
}
