package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"percviz/core/ml"
)

func TestRead(t *testing.T) {
	in := "x,y,label\n-1.5,2,0\n3, 4.25 ,1\n\n0,0,0\n"
	ds, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []ml.LabeledPoint{
		{X: -1.5, Y: 2, Label: ml.Label0},
		{X: 3, Y: 4.25, Label: ml.Label1},
		{X: 0, Y: 0, Label: ml.Label0},
	}, ds.Points())
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ml.ErrEmptyDataset},
		{"header only", "x,y,label\n", ml.ErrEmptyDataset},
		{"bad header", "a,b,c\n1,2,0\n", ErrBadHeader},
		{"missing header", "1,2,0\n", ErrBadHeader},
		{"bad float", "x,y,label\n1,abc,0\n", ErrBadRow},
		{"bad label", "x,y,label\n1,2,2\n", ErrBadRow},
		{"short row", "x,y,label\n1,2\n", ErrBadRow},
		{"quote", "x,y,label\n1,\"2,0\n", ErrBadRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "%v", err)
		})
	}
}

func TestReadReportsLine(t *testing.T) {
	_, err := Read(strings.NewReader("x,y,label\n1,2,0\n1,2,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestWriteReadRoundTrip(t *testing.T) {
	ds, err := DefaultGenerator(7).Dataset()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ds))
	assert.True(t, strings.HasPrefix(buf.String(), "x,y,label\n"))

	back, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, ds.Len(), back.Len())
	for i := 0; i < ds.Len(); i++ {
		assert.InDelta(t, ds.At(i).X, back.At(i).X, 1e-6)
		assert.InDelta(t, ds.At(i).Y, back.At(i).Y, 1e-6)
		assert.Equal(t, ds.At(i).Label, back.At(i).Label)
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	ds, err := ml.NewDataset([]ml.LabeledPoint{{X: 1, Y: 2, Label: ml.Label1}})
	require.NoError(t, err)

	require.NoError(t, Save(path, ds))
	back, err := File{Path: path}.Dataset()
	require.NoError(t, err)
	assert.Equal(t, ds.Points(), back.Points())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestGeneratorReproducible(t *testing.T) {
	for _, policy := range []Policy{PolicyBanded, PolicyShifted, PolicyMargin} {
		g := Generator{Policy: policy, Points: 101, Seed: 3, Separation: 2.5, A0: 1, B0: 1, A1: 1.09, B1: 9}
		a, err := g.Dataset()
		require.NoError(t, err, policy)
		b, err := g.Dataset()
		require.NoError(t, err, policy)
		assert.Equal(t, a.Points(), b.Points(), policy)

		assert.Equal(t, 101, a.Len())
		assert.Equal(t, 50, a.Count(ml.Label0))
		assert.Equal(t, 51, a.Count(ml.Label1))
		// class 0 first
		assert.Equal(t, ml.Label0, a.At(0).Label)
		assert.Equal(t, ml.Label1, a.At(100).Label)

		g.Seed = 4
		c, err := g.Dataset()
		require.NoError(t, err)
		assert.NotEqual(t, a.Points(), c.Points(), policy)
	}
}

func TestGeneratorMarginSeparable(t *testing.T) {
	ds, err := Generator{Policy: PolicyMargin, Points: 300, Seed: 1, Separation: 5}.Dataset()
	require.NoError(t, err)
	for _, p := range ds.Points() {
		if p.Label == ml.Label0 {
			assert.Less(t, p.Y, p.X-5)
		} else {
			assert.Greater(t, p.Y, p.X+5)
		}
	}
}

func TestGeneratorErrors(t *testing.T) {
	_, err := Generator{Points: 1}.Dataset()
	assert.True(t, errors.Is(err, ml.ErrEmptyDataset))

	_, err = Generator{Policy: "spiral", Points: 10}.Dataset()
	assert.True(t, errors.Is(err, ErrUnknownPolicy))

	_, err = Generator{Policy: PolicyMargin, Points: 10, Separation: 25}.Dataset()
	assert.Error(t, err)
}
