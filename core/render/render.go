// Package render draws composed frames. Renderers only consume
// view.Frame values; they never touch the learner.
package render

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"percviz/core/view"
)

const (
	ModeTerminal = "terminal"
	ModePNG      = "png"
	ModeNone     = "none"
)

var ErrUnknownMode = errors.New("render: unknown mode")

type Renderer interface {
	Render(f view.Frame) error
	Close() error
}

// Config selects and configures a renderer.
type Config struct {
	Mode    string
	Out     io.Writer // terminal
	Cols    int       // terminal
	Rows    int       // terminal
	Clear   bool      // terminal
	Dir     string    // png
	Workers int       // png
}

func New(c Config) (Renderer, error) {
	switch strings.ToLower(c.Mode) {
	case ModeTerminal, "":
		return NewTerminal(c.Out, c.Cols, c.Rows, c.Clear), nil
	case ModePNG:
		return NewPNGSequence(c.Dir, c.Workers)
	case ModeNone:
		return Nop{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%q", c.Mode)
	}
}

type Nop struct{}

func (Nop) Render(view.Frame) error { return nil }
func (Nop) Close() error            { return nil }
