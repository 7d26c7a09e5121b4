package ml

import (
	"math"

	"github.com/pkg/errors"
)

type Label int

const (
	Label0 Label = 0
	Label1 Label = 1
)

var (
	ErrEmptyDataset = errors.New("ml: dataset must contain at least one point")
	ErrInvalidPoint = errors.New("ml: invalid labeled point")
)

func (l Label) Valid() bool {
	return l == Label0 || l == Label1
}

type LabeledPoint struct {
	X     float64
	Y     float64
	Label Label
}

// Dataset is an immutable ordered sequence of labeled points. The epoch
// sweep visits points in exactly this order.
type Dataset struct {
	data []LabeledPoint
}

// Provider supplies the dataset for a training run.
type Provider interface {
	Dataset() (*Dataset, error)
}

// NewDataset copies points into a new Dataset.
func NewDataset(points []LabeledPoint) (*Dataset, error) {
	if len(points) == 0 {
		return nil, ErrEmptyDataset
	}
	data := make([]LabeledPoint, len(points))
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return nil, errors.Wrapf(ErrInvalidPoint, "point %d has non-finite coordinates (%v, %v)", i, p.X, p.Y)
		}
		if !p.Label.Valid() {
			return nil, errors.Wrapf(ErrInvalidPoint, "point %d has label %d", i, p.Label)
		}
		data[i] = p
	}
	return &Dataset{data: data}, nil
}

func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.data)
}

func (ds *Dataset) At(i int) LabeledPoint {
	return ds.data[i]
}

// Points returns a copy of the points in dataset order.
func (ds *Dataset) Points() []LabeledPoint {
	out := make([]LabeledPoint, len(ds.data))
	copy(out, ds.data)
	return out
}

// Reversed returns a new dataset holding the same points in reverse order.
func (ds *Dataset) Reversed() *Dataset {
	out := make([]LabeledPoint, len(ds.data))
	for i, p := range ds.data {
		out[len(ds.data)-1-i] = p
	}
	return &Dataset{data: out}
}

// Count returns the number of points carrying label l.
func (ds *Dataset) Count(l Label) int {
	n := 0
	for _, p := range ds.data {
		if p.Label == l {
			n++
		}
	}
	return n
}
