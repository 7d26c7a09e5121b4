package ml

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDataset(t *testing.T, pts ...LabeledPoint) *Dataset {
	ds, err := NewDataset(pts)
	require.NoError(t, err)
	return ds
}

func TestClassify(t *testing.T) {
	p, err := NewPerceptron()
	require.NoError(t, err)

	assert.Equal(t, Label1, p.Classify(LabeledPoint{X: 1, Y: 0}))
	assert.Equal(t, Label0, p.Classify(LabeledPoint{X: -1, Y: 0}))
	// 0 + 1*3 - 1.5*2 == 0 lies on the line
	assert.Equal(t, Label0, p.Classify(LabeledPoint{X: 3, Y: 2, Label: Label1}))
	assert.Equal(t, Label0, p.Classify(LabeledPoint{}))
}

func TestUpdateWeightsIdempotentOnCorrectPoint(t *testing.T) {
	p, err := NewPerceptron(WithWeights(Weights{W0: 0.3, W1: -0.7, W2: 2.1}))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		pt := LabeledPoint{X: rnd.Float64()*20 - 10, Y: rnd.Float64()*20 - 10}
		pt.Label = p.Classify(pt)

		before := p.Weights()
		require.NoError(t, p.UpdateWeights(pt))
		after := p.Weights()
		assert.Equal(t, math.Float64bits(before.W0), math.Float64bits(after.W0))
		assert.Equal(t, math.Float64bits(before.W1), math.Float64bits(after.W1))
		assert.Equal(t, math.Float64bits(before.W2), math.Float64bits(after.W2))
	}
}

func TestUpdateWeightsRule(t *testing.T) {
	p, err := NewPerceptron()
	require.NoError(t, err)

	// s = 2 - 1.5 = 0.5 -> 1, label 0, error -1
	require.NoError(t, p.UpdateWeights(LabeledPoint{X: 2, Y: 1, Label: Label0}))
	w := p.Weights()
	assert.InDelta(t, -0.1, w.W0, 1e-12)
	assert.InDelta(t, 0.8, w.W1, 1e-12)
	assert.InDelta(t, -1.6, w.W2, 1e-12)

	// s = -0.1 - 1.6 = -1.7 -> 0, label 1, error +1
	require.NoError(t, p.UpdateWeights(LabeledPoint{X: 0, Y: 1, Label: Label1}))
	w = p.Weights()
	assert.InDelta(t, 0.0, w.W0, 1e-12)
	assert.InDelta(t, 0.8, w.W1, 1e-12)
	assert.InDelta(t, -1.5, w.W2, 1e-12)
}

func TestUpdateWeightsNonFinite(t *testing.T) {
	p, err := NewPerceptron(WithLearningRate(math.MaxFloat64))
	require.NoError(t, err)

	before := p.Weights()
	// w1 + MaxFloat64 * (-2) overflows
	err = p.UpdateWeights(LabeledPoint{X: -2, Y: 0, Label: Label1})
	assert.True(t, errors.Is(err, ErrNonFiniteWeights))
	assert.Equal(t, before, p.Weights())
}

func TestNewPerceptronOptions(t *testing.T) {
	p, err := NewPerceptron()
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights, p.Weights())
	assert.Equal(t, DefaultLearningRate, p.LearningRate())

	_, err = NewPerceptron(WithWeights(Weights{W0: math.NaN()}))
	assert.True(t, errors.Is(err, ErrNonFiniteWeights))

	_, err = NewPerceptron(WithLearningRate(0))
	assert.Error(t, err)
	_, err = NewPerceptron(WithLearningRate(math.Inf(1)))
	assert.Error(t, err)

	p, err = NewPerceptron(WithLearningRate(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.LearningRate())
}

func TestRunEpochTallyDuringSweep(t *testing.T) {
	p, err := NewPerceptron()
	require.NoError(t, err)

	ds := newDataset(t,
		LabeledPoint{-1, -1, Label0},
		LabeledPoint{-2, -1, Label0},
		LabeledPoint{1, 1, Label1},
		LabeledPoint{2, 1, Label1},
	)

	res, err := p.RunEpoch(ds)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Epoch)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Misclassified)
	assert.InDelta(t, 0.5, res.Accuracy, 1e-12)
	assert.Equal(t, 1, p.Epochs())

	w := p.Weights()
	assert.InDelta(t, 0.0, w.W0, 1e-12)
	assert.InDelta(t, 1.2, w.W1, 1e-12)
	assert.InDelta(t, -1.3, w.W2, 1e-12)
}

func TestRunEpochEmptyDataset(t *testing.T) {
	p, err := NewPerceptron()
	require.NoError(t, err)

	_, err = p.RunEpoch(nil)
	assert.Equal(t, ErrEmptyDataset, err)
	_, err = p.RunEpoch(&Dataset{})
	assert.Equal(t, ErrEmptyDataset, err)
	assert.Equal(t, 0, p.Epochs())
}

func TestRunEpochPoisonedWeights(t *testing.T) {
	p, err := NewPerceptron()
	require.NoError(t, err)
	p.w.W1 = math.Inf(-1)

	_, err = p.RunEpoch(newDataset(t, LabeledPoint{1, 1, Label1}))
	assert.True(t, errors.Is(err, ErrNonFiniteWeights))
}

func TestRunEpochOrderSensitivity(t *testing.T) {
	a := LabeledPoint{X: 0, Y: 1, Label: Label1}
	b := LabeledPoint{X: -14.5, Y: -10, Label: Label0}

	seed, err := NewPerceptron()
	require.NoError(t, err)
	require.NotEqual(t, a.Label, seed.Classify(a))
	require.NotEqual(t, b.Label, seed.Classify(b))

	ab, err := NewPerceptron()
	require.NoError(t, err)
	_, err = ab.RunEpoch(newDataset(t, a, b))
	require.NoError(t, err)

	ba, err := NewPerceptron()
	require.NoError(t, err)
	_, err = ba.RunEpoch(newDataset(t, a, b).Reversed())
	require.NoError(t, err)

	assert.NotEqual(t, ab.Weights(), ba.Weights())
}

func TestRunEpochConvergesOnSeparableClusters(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	var pts []LabeledPoint
	for len(pts) < 200 {
		x := rnd.Float64()*20 - 10
		y := rnd.Float64()*20 - 10
		switch {
		case y < x-5:
			pts = append(pts, LabeledPoint{x, y, Label0})
		case y > x+5:
			pts = append(pts, LabeledPoint{x, y, Label1})
		}
	}
	ds := newDataset(t, pts...)

	p, err := NewPerceptron()
	require.NoError(t, err)

	var trace []float64
	converged := false
	for i := 0; i < 1000; i++ {
		res, err := p.RunEpoch(ds)
		require.NoError(t, err)
		trace = append(trace, res.Accuracy)
		if res.Converged() {
			converged = true
			break
		}
	}
	require.True(t, converged, "no convergence within 1000 epochs, accuracy trace %v", trace)
	assert.Equal(t, 1.0, trace[len(trace)-1])
	for _, pt := range ds.Points() {
		assert.Equal(t, pt.Label, p.Classify(pt))
	}
}

func TestEndToEndFourPoints(t *testing.T) {
	ds := newDataset(t,
		LabeledPoint{-1, -1, Label0},
		LabeledPoint{-2, -1, Label0},
		LabeledPoint{1, 1, Label1},
		LabeledPoint{2, 1, Label1},
	)
	p, err := NewPerceptron(WithWeights(Weights{W0: 0, W1: 1, W2: -1.5}))
	require.NoError(t, err)

	var last EpochResult
	for i := 0; i < 1000; i++ {
		last, err = p.RunEpoch(ds)
		require.NoError(t, err)
		if last.Converged() {
			break
		}
	}
	require.Equal(t, 0, last.Misclassified)
	assert.Equal(t, 1.0, last.Accuracy)
	for _, pt := range ds.Points() {
		assert.Equal(t, pt.Label, p.Classify(pt))
	}
}

func TestBoundary(t *testing.T) {
	p, err := NewPerceptron(WithWeights(Weights{W0: 0, W1: 1, W2: -1.5}))
	require.NoError(t, err)

	l, err := p.Boundary()
	require.NoError(t, err)
	assert.InDelta(t, 0.667, l.Slope, 1e-3)
	assert.InDelta(t, 0.0, l.Intercept, 1e-12)
	assert.InDelta(t, 2.0, l.At(3), 1e-12)

	p, err = NewPerceptron(WithWeights(Weights{W0: 1, W1: 1, W2: 0}))
	require.NoError(t, err)
	_, err = p.Boundary()
	assert.True(t, errors.Is(err, ErrDegenerateBoundary))

	p, err = NewPerceptron(WithWeights(Weights{W0: 1, W1: math.MaxFloat64, W2: 1e-300}))
	require.NoError(t, err)
	_, err = p.Boundary()
	assert.True(t, errors.Is(err, ErrDegenerateBoundary))
}
