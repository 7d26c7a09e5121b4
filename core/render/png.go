package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"percviz/core/ml"
	"percviz/core/view"
)

const pointRadius = 2

var (
	colorBackground = color.RGBA{0, 0, 0, 255}
	colorLabel0     = color.RGBA{255, 0, 0, 255}
	colorLabel1     = color.RGBA{0, 0, 255, 255}
	colorBoundary   = color.RGBA{0, 255, 0, 255}
)

// PNGSequence writes every frame to dir as frame_NNNNN.png. Rasterizing
// happens on the caller; encoding and file output run on up to workers
// goroutines. Close waits for pending frames and reports the first error.
type PNGSequence struct {
	dir   string
	g     errgroup.Group
	count int

	mutex sync.Mutex
	files []string
}

func NewPNGSequence(dir string, workers int) (*PNGSequence, error) {
	if dir == "" {
		return nil, errors.New("render: png output needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "render: png dir")
	}
	if workers <= 0 {
		workers = 1
	}
	s := &PNGSequence{dir: dir}
	s.g.SetLimit(workers)
	return s, nil
}

func (s *PNGSequence) Render(f view.Frame) error {
	img := Rasterize(f)
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%05d.png", s.count))
	s.count++

	s.g.Go(func() error {
		if err := writePNG(path, img); err != nil {
			return err
		}
		s.mutex.Lock()
		s.files = append(s.files, path)
		s.mutex.Unlock()
		return nil
	})
	return nil
}

func (s *PNGSequence) Close() error {
	return s.g.Wait()
}

// Files lists the frames written so far, in completion order.
func (s *PNGSequence) Files() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Rasterize draws f on a black canvas: 5x5 red or blue squares for the
// points and a green boundary.
func Rasterize(f view.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colorBackground}, image.Point{}, draw.Src)

	for _, p := range f.Line {
		img.SetRGBA(p.X, p.Y, colorBoundary)
	}
	for _, p := range f.Points {
		c := colorLabel0
		if p.Label == ml.Label1 {
			c = colorLabel1
		}
		r := image.Rect(p.X-pointRadius, p.Y-pointRadius, p.X+pointRadius+1, p.Y+pointRadius+1).Intersect(img.Bounds())
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	return img
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "render: png create")
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return errors.Wrapf(err, "render: png encode %s", path)
	}
	return errors.Wrap(out.Close(), "render: png close")
}
