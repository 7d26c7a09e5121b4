package ml

import (
	"math"

	"github.com/pkg/errors"
)

const DefaultLearningRate = 0.1

var (
	ErrNonFiniteWeights   = errors.New("ml: perceptron weights are not finite")
	ErrDegenerateBoundary = errors.New("ml: decision boundary is vertical (w2 == 0)")
)

// DefaultWeights is the fixed seed configuration of a new perceptron.
var DefaultWeights = Weights{W0: 0, W1: 1, W2: -1.5}

// Weights define the separating line W1*x + W2*y + W0 = 0.
type Weights struct {
	W0 float64 // bias
	W1 float64
	W2 float64
}

func (w Weights) Finite() bool {
	return finite(w.W0) && finite(w.W1) && finite(w.W2)
}

type EpochResult struct {
	Epoch         int
	Misclassified int
	Total         int
	Accuracy      float64
}

func (r EpochResult) Converged() bool {
	return r.Misclassified == 0
}

// Line is the decision boundary in slope-intercept form y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

type Option func(*Perceptron) error

func WithWeights(w Weights) Option {
	return func(p *Perceptron) error {
		if !w.Finite() {
			return errors.Wrapf(ErrNonFiniteWeights, "initial weights %+v", w)
		}
		p.w = w
		return nil
	}
}

// WithLearningRate sets the constant rate used for the whole run.
func WithLearningRate(rate float64) Option {
	return func(p *Perceptron) error {
		if !finite(rate) || rate <= 0 {
			return errors.Errorf("ml: learning rate must be positive and finite, got %v", rate)
		}
		p.rate = rate
		return nil
	}
}

// Perceptron is a single-layer online binary classifier over 2D points.
// It is owned by one goroutine; no method is safe for concurrent use.
type Perceptron struct {
	w     Weights
	rate  float64
	epoch int
}

func NewPerceptron(opts ...Option) (*Perceptron, error) {
	p := &Perceptron{w: DefaultWeights, rate: DefaultLearningRate}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Perceptron) Weights() Weights {
	return p.w
}

func (p *Perceptron) LearningRate() float64 {
	return p.rate
}

// Epochs returns the number of sweeps completed so far.
func (p *Perceptron) Epochs() int {
	return p.epoch
}

// Classify returns Label1 when w0 + w1*x + w2*y > 0. Points on the line
// belong to Label0.
func (p *Perceptron) Classify(pt LabeledPoint) Label {
	s := p.w.W0 + p.w.W1*pt.X + p.w.W2*pt.Y
	if s > 0 {
		return Label1
	}
	return Label0
}

// UpdateWeights applies the perceptron rule for a single point. Weights are
// left untouched when the point is already classified correctly, and when
// the update would produce a non-finite weight.
func (p *Perceptron) UpdateWeights(pt LabeledPoint) error {
	e := float64(pt.Label - p.Classify(pt))
	if e == 0 {
		return nil
	}

	next := Weights{
		W0: p.w.W0 + p.rate*e,
		W1: p.w.W1 + p.rate*e*pt.X,
		W2: p.w.W2 + p.rate*e*pt.Y,
	}
	if !next.Finite() {
		return errors.Wrapf(ErrNonFiniteWeights, "update on point (%v, %v) gives %+v", pt.X, pt.Y, next)
	}
	p.w = next
	return nil
}

// RunEpoch sweeps ds once in order, updating the weights immediately after
// every misclassified point. The tally counts points that were wrong at the
// moment they were visited.
func (p *Perceptron) RunEpoch(ds *Dataset) (EpochResult, error) {
	if ds.Len() == 0 {
		return EpochResult{}, ErrEmptyDataset
	}
	if !p.w.Finite() {
		return EpochResult{}, errors.Wrapf(ErrNonFiniteWeights, "epoch %d", p.epoch)
	}

	misclassified := 0
	for i, pt := range ds.data {
		if p.Classify(pt) == pt.Label {
			continue
		}
		if err := p.UpdateWeights(pt); err != nil {
			return EpochResult{}, errors.WithMessagef(err, "epoch %d, point %d", p.epoch, i)
		}
		misclassified++
	}

	total := len(ds.data)
	res := EpochResult{
		Epoch:         p.epoch,
		Misclassified: misclassified,
		Total:         total,
		Accuracy:      1 - float64(misclassified)/float64(total),
	}
	p.epoch++
	return res, nil
}

// Boundary returns the current decision line in slope-intercept form.
func (p *Perceptron) Boundary() (Line, error) {
	if p.w.W2 == 0 {
		return Line{}, ErrDegenerateBoundary
	}
	l := Line{Slope: -p.w.W1 / p.w.W2, Intercept: -p.w.W0 / p.w.W2}
	if !finite(l.Slope) || !finite(l.Intercept) {
		return Line{}, errors.Wrapf(ErrDegenerateBoundary, "w2 = %v", p.w.W2)
	}
	return l, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
