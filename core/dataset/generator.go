package dataset

import (
	"math/rand"

	"github.com/pkg/errors"

	"percviz/core/ml"
)

type Policy string

const (
	// PolicyBanded draws each class in a noisy band around its own line.
	PolicyBanded Policy = "banded"
	// PolicyShifted draws both classes uniformly, class 1 shifted right.
	PolicyShifted Policy = "shifted"
	// PolicyMargin keeps class 0 below y = x - m and class 1 above y = x + m.
	PolicyMargin Policy = "margin"
)

var ErrUnknownPolicy = errors.New("dataset: unknown generation policy")

// Generator synthesizes a dataset from a seeded source, so equal settings
// always produce the same points in the same order. Class 0 comes first.
type Generator struct {
	Policy     Policy
	Points     int
	Seed       int64
	Separation float64

	// banded only
	A0, B0 float64
	A1, B1 float64
}

// DefaultGenerator returns the banded layout: 900 points, class 0 around
// y = x + 1 and class 1 around y = 1.09x + 9, each with noise of ±3.
func DefaultGenerator(seed int64) Generator {
	return Generator{
		Policy:     PolicyBanded,
		Points:     900,
		Seed:       seed,
		Separation: 3,
		A0:         1,
		B0:         1,
		A1:         1.09,
		B1:         9,
	}
}

func (g Generator) Dataset() (*ml.Dataset, error) {
	if g.Points < 2 {
		return nil, errors.Wrapf(ml.ErrEmptyDataset, "generator needs at least 2 points, got %d", g.Points)
	}
	rnd := rand.New(rand.NewSource(g.Seed))

	n0 := g.Points / 2
	n1 := g.Points - n0
	points := make([]ml.LabeledPoint, 0, g.Points)

	switch g.Policy {
	case PolicyBanded, "":
		for i := 0; i < n0; i++ {
			x := gridCoord(rnd)
			points = append(points, ml.LabeledPoint{X: x, Y: g.A0*x + g.B0 + unitNoise(rnd)*g.Separation, Label: ml.Label0})
		}
		for i := 0; i < n1; i++ {
			x := gridCoord(rnd)
			points = append(points, ml.LabeledPoint{X: x, Y: g.A1*x + g.B1 + unitNoise(rnd)*g.Separation, Label: ml.Label1})
		}
	case PolicyShifted:
		for i := 0; i < n0; i++ {
			points = append(points, ml.LabeledPoint{X: gridCoord(rnd), Y: gridCoord(rnd), Label: ml.Label0})
		}
		for i := 0; i < n1; i++ {
			points = append(points, ml.LabeledPoint{X: gridCoord(rnd) + g.Separation, Y: gridCoord(rnd), Label: ml.Label1})
		}
	case PolicyMargin:
		// the grid spans 20 units, wider margins leave no room for class 0
		if g.Separation <= 0 || g.Separation >= 19 {
			return nil, errors.Errorf("dataset: margin policy needs a separation in (0, 19), got %v", g.Separation)
		}
		for len(points) < n0 {
			x, y := gridCoord(rnd), gridCoord(rnd)
			if y < x-g.Separation {
				points = append(points, ml.LabeledPoint{X: x, Y: y, Label: ml.Label0})
			}
		}
		for len(points) < g.Points {
			x, y := gridCoord(rnd), gridCoord(rnd)
			if y > x+g.Separation {
				points = append(points, ml.LabeledPoint{X: x, Y: y, Label: ml.Label1})
			}
		}
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "%q", g.Policy)
	}

	return ml.NewDataset(points)
}

// gridCoord returns a value on the 0.1 grid over [-10, 10).
func gridCoord(rnd *rand.Rand) float64 {
	return float64(rnd.Intn(200)-100) / 10
}

// unitNoise returns a value on the 0.01 grid over [-1, 1).
func unitNoise(rnd *rand.Rand) float64 {
	return float64(rnd.Intn(200)-100) / 100
}
