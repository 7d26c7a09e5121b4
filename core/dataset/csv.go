// Package dataset loads, stores and synthesizes labeled 2D point sets in
// the header-tagged CSV layout:
//
//	x,y,label
//	-3.200000,1.500000,0
//	4.100000,9.000000,1
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"percviz/core/ml"
)

var (
	ErrBadHeader = errors.New("dataset: header must be x,y,label")
	ErrBadRow    = errors.New("dataset: malformed row")
)

var header = []string{"x", "y", "label"}

// Read parses a CSV dataset. Points keep their row order.
func Read(r io.Reader) (*ml.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rec, err := cr.Read()
	if err == io.EOF {
		return nil, ml.ErrEmptyDataset
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read header")
	}
	if !isHeader(rec) {
		return nil, errors.Wrapf(ErrBadHeader, "got %q", strings.Join(rec, ","))
	}

	var points []ml.LabeledPoint
	for {
		rec, err = cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number
			return nil, errors.Wrapf(ErrBadRow, "%v", err)
		}
		line, _ := cr.FieldPos(0)
		p, err := parseRow(rec)
		if err != nil {
			return nil, errors.Wrapf(ErrBadRow, "line %d: %v", line, err)
		}
		points = append(points, p)
	}

	return ml.NewDataset(points)
}

func isHeader(rec []string) bool {
	if len(rec) != len(header) {
		return false
	}
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(rec[i])) != h {
			return false
		}
	}
	return true
}

func parseRow(rec []string) (ml.LabeledPoint, error) {
	if len(rec) != 3 {
		return ml.LabeledPoint{}, errors.Errorf("want 3 fields, got %d", len(rec))
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return ml.LabeledPoint{}, errors.Wrap(err, "x")
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return ml.LabeledPoint{}, errors.Wrap(err, "y")
	}
	var label ml.Label
	switch strings.TrimSpace(rec[2]) {
	case "0":
		label = ml.Label0
	case "1":
		label = ml.Label1
	default:
		return ml.LabeledPoint{}, errors.Errorf("label must be 0 or 1, got %q", rec[2])
	}
	return ml.LabeledPoint{X: x, Y: y, Label: label}, nil
}

func Load(path string) (*ml.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dataset: open")
	}
	defer f.Close()

	ds, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return ds, nil
}

// Write emits ds with the x,y,label header, six decimals per coordinate.
func Write(w io.Writer, ds *ml.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "dataset: write header")
	}
	for i := 0; i < ds.Len(); i++ {
		p := ds.At(i)
		rec := []string{
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
			strconv.Itoa(int(p.Label)),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "dataset: write row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "dataset: flush")
}

func Save(path string, ds *ml.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "dataset: create")
	}
	if err := Write(f, ds); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "dataset: close")
}

// File provides a dataset read from a CSV file.
type File struct {
	Path string
}

func (f File) Dataset() (*ml.Dataset, error) {
	return Load(f.Path)
}
