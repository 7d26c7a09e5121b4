// Package report holds the bus subscribers that observe training: a
// console progress printer and an accuracy history recorder.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"percviz/common"
	"percviz/core/ml"
	"percviz/core/msgbus"
)

var ErrUnexpectedPayload = errors.New("report: unexpected message payload")

func epochResult(msg *msgbus.BusMessage) (ml.EpochResult, error) {
	res, ok := msg.Msg.(ml.EpochResult)
	if !ok {
		return ml.EpochResult{}, errors.Wrapf(ErrUnexpectedPayload, "type %d carries %T", msg.MsgType, msg.Msg)
	}
	return res, nil
}

// Console prints one progress line per epoch and a closing line when the
// run converges or halts.
type Console struct {
	w io.Writer
	p *message.Printer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, p: message.NewPrinter(language.English)}
}

func (c *Console) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	res, err := epochResult(msg)
	if err != nil {
		return err
	}
	switch msg.MsgType {
	case common.LocalTrainMsg_Epoch:
		_, err = c.p.Fprintf(c.w, "Epoch: %d | Accuracy: %.2f%% | Misclassified: %d\n",
			res.Epoch, res.Accuracy*100, res.Misclassified)
	case common.LocalTrainMsg_Converged:
		_, err = c.p.Fprintf(c.w, "Solution found after %d epochs!\n", res.Epoch)
	case common.LocalTrainMsg_Halted:
		_, err = c.p.Fprintf(c.w, "Training ended without finding a perfect solution.\n")
	}
	return errors.Wrap(err, "report: console")
}

// Recorder keeps the per-epoch trace of a run. Accuracy is not expected to
// rise monotonically.
type Recorder struct {
	mutex   sync.RWMutex
	results []ml.EpochResult
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	if msg.MsgType != common.LocalTrainMsg_Epoch {
		return nil
	}
	res, err := epochResult(msg)
	if err != nil {
		return err
	}
	r.mutex.Lock()
	r.results = append(r.results, res)
	r.mutex.Unlock()
	return nil
}

func (r *Recorder) Results() []ml.EpochResult {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]ml.EpochResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Recorder) Accuracies() []float64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]float64, len(r.results))
	for i, res := range r.results {
		out[i] = res.Accuracy
	}
	return out
}

// Best returns the epoch with the highest accuracy, the earliest on ties.
func (r *Recorder) Best() (ml.EpochResult, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if len(r.results) == 0 {
		return ml.EpochResult{}, false
	}
	best := r.results[0]
	for _, res := range r.results[1:] {
		if res.Accuracy > best.Accuracy {
			best = res
		}
	}
	return best, true
}

// WriteCSV writes the trace as epoch,misclassified,accuracy rows.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "misclassified", "accuracy"}); err != nil {
		return errors.Wrap(err, "report: write header")
	}
	for _, res := range r.Results() {
		rec := []string{
			strconv.Itoa(res.Epoch),
			strconv.Itoa(res.Misclassified),
			strconv.FormatFloat(res.Accuracy, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "report: write epoch %d", res.Epoch)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flush")
}

func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "report: create")
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "report: close")
}
