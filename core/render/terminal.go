package render

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"percviz/core/ml"
	"percviz/core/view"
)

const (
	defaultCols = 80
	defaultRows = 30

	glyphEmpty  = ' '
	glyphLine   = '.'
	glyphLabel0 = 'o'
	glyphLabel1 = 'x'
	glyphMixed  = '#'

	clearScreen = "\033[H\033[2J"
)

// Terminal downsamples each frame onto a character grid. Points win over
// the boundary; a cell holding both labels is drawn as '#'.
type Terminal struct {
	w     *bufio.Writer
	cols  int
	rows  int
	clear bool
	grid  [][]rune
}

func NewTerminal(out io.Writer, cols, rows int, clear bool) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	if cols <= 0 {
		cols = defaultCols
	}
	if rows <= 0 {
		rows = defaultRows
	}
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = make([]rune, cols)
	}
	return &Terminal{w: bufio.NewWriter(out), cols: cols, rows: rows, clear: clear, grid: grid}
}

func (t *Terminal) cell(f view.Frame, p view.Pixel) (int, int) {
	return p.X * t.cols / f.Width, p.Y * t.rows / f.Height
}

func (t *Terminal) Render(f view.Frame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Errorf("render: frame size %dx%d", f.Width, f.Height)
	}
	for _, row := range t.grid {
		for i := range row {
			row[i] = glyphEmpty
		}
	}
	for _, p := range f.Line {
		c, r := t.cell(f, p)
		t.grid[r][c] = glyphLine
	}
	for _, p := range f.Points {
		c, r := t.cell(f, p.Pixel)
		g := glyphLabel0
		if p.Label == ml.Label1 {
			g = glyphLabel1
		}
		switch t.grid[r][c] {
		case glyphEmpty, glyphLine, g:
			t.grid[r][c] = g
		default:
			t.grid[r][c] = glyphMixed
		}
	}

	if t.clear {
		t.w.WriteString(clearScreen)
	}
	res := f.Result
	fmt.Fprintf(t.w, "epoch %d  accuracy %.2f%%  misclassified %d/%d\n",
		res.Epoch, res.Accuracy*100, res.Misclassified, res.Total)
	if f.HasBoundary {
		fmt.Fprintf(t.w, "boundary y = %.4f*x %+.4f\n", f.Boundary.Slope, f.Boundary.Intercept)
	} else {
		fmt.Fprintf(t.w, "boundary vertical (w0=%.4f w1=%.4f w2=0)\n", f.Weights.W0, f.Weights.W1)
	}
	for _, row := range t.grid {
		t.w.WriteString(string(row))
		t.w.WriteByte('\n')
	}
	return errors.Wrap(t.w.Flush(), "render: terminal")
}

func (t *Terminal) Close() error {
	return errors.Wrap(t.w.Flush(), "render: terminal")
}
