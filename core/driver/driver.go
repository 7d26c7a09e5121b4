package driver

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"percviz/common"
	"percviz/core/ml"
	"percviz/core/msgbus"
	"percviz/core/render"
	"percviz/core/view"
)

const DefaultFrameDelay = 100 * time.Millisecond

var ErrMaxEpochs = errors.New("driver: epoch limit reached without convergence")

type Summary struct {
	RunID       string
	Epochs      int
	Converged   bool
	Interrupted bool
	Final       ml.EpochResult
	Weights     ml.Weights
}

type Option func(*Driver)

// WithMaxEpochs caps the number of sweeps. 0 keeps training until
// convergence or quit, which never ends on data that is not linearly
// separable.
func WithMaxEpochs(n int) Option {
	return func(d *Driver) { d.maxEpochs = n }
}

func WithFrameDelay(delay time.Duration) Option {
	return func(d *Driver) { d.delay = delay }
}

// WithHold keeps the converged frame on screen until ctx is done.
func WithHold(hold bool) Option {
	return func(d *Driver) { d.hold = hold }
}

func WithRunID(id string) Option {
	return func(d *Driver) { d.runID = id }
}

// Driver steps the learner one epoch per frame and renders the result.
// It runs on a single goroutine and owns the perceptron for the whole run.
type Driver struct {
	learner  *ml.Perceptron
	ds       *ml.Dataset
	vp       view.Viewport
	renderer render.Renderer
	bus      msgbus.MessageBus
	log      common.Logger

	runID     string
	maxEpochs int
	delay     time.Duration
	hold      bool
}

func New(learner *ml.Perceptron, ds *ml.Dataset, vp view.Viewport, r render.Renderer,
	bus msgbus.MessageBus, log common.Logger, opts ...Option) (*Driver, error) {
	if learner == nil {
		return nil, errors.New("driver: nil learner")
	}
	if ds.Len() == 0 {
		return nil, ml.ErrEmptyDataset
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = render.Nop{}
	}
	if bus == nil {
		bus = msgbus.NewMessageBus()
	}
	if log == nil {
		log = common.GetLogger(common.MODULE_DRIVER)
	}
	d := &Driver{
		learner:  learner,
		ds:       ds,
		vp:       vp,
		renderer: r,
		bus:      bus,
		log:      log,
		delay:    DefaultFrameDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxEpochs < 0 {
		return nil, errors.Errorf("driver: max epochs must not be negative, got %d", d.maxEpochs)
	}
	return d, nil
}

// Run trains until the learner converges, the epoch cap is hit, or ctx is
// cancelled. Cancellation is only observed between epochs. Hitting the cap
// returns ErrMaxEpochs along with the summary.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: d.runID}
	d.log.Infof("training on %d points (%d/%d per class), max epochs %d, frame delay %s",
		d.ds.Len(), d.ds.Count(ml.Label0), d.ds.Count(ml.Label1), d.maxEpochs, d.delay)

	for {
		if ctx.Err() != nil {
			return d.halt(sum, true)
		}

		res, err := d.learner.RunEpoch(d.ds)
		if err != nil {
			d.log.Errorf("epoch %d failed: %v", d.learner.Epochs(), err)
			return sum, err
		}
		sum.Epochs++
		sum.Final = res
		sum.Weights = d.learner.Weights()
		d.log.Debugf("epoch %d misclassified %d accuracy %.4f weights %+v",
			res.Epoch, res.Misclassified, res.Accuracy, sum.Weights)

		if err := d.bus.Publish(d.runID, common.LocalTrainMsg_Epoch, res); err != nil {
			d.log.Warnf("epoch %d observer: %v", res.Epoch, err)
		}
		if err := d.drawFrame(res); err != nil {
			return sum, err
		}

		if res.Converged() {
			sum.Converged = true
			d.log.Infof("converged at epoch %d with weights %+v", res.Epoch, sum.Weights)
			if err := d.bus.Publish(d.runID, common.LocalTrainMsg_Converged, res); err != nil {
				d.log.Warnf("converged observer: %v", err)
			}
			if d.hold {
				<-ctx.Done()
				sum.Interrupted = true
			}
			return sum, nil
		}

		if d.maxEpochs > 0 && sum.Epochs >= d.maxEpochs {
			sum, _ = d.halt(sum, false)
			return sum, errors.Wrapf(ErrMaxEpochs, "%d epochs, %d still misclassified", sum.Epochs, res.Misclassified)
		}

		if !d.wait(ctx) {
			return d.halt(sum, true)
		}
	}
}

func (d *Driver) drawFrame(res ml.EpochResult) error {
	line, err := d.learner.Boundary()
	hasLine := err == nil
	if err != nil {
		if !errors.Is(err, ml.ErrDegenerateBoundary) {
			return err
		}
		d.log.Warnf("epoch %d: %v, drawing points only", res.Epoch, err)
		if err := d.bus.Publish(d.runID, common.LocalRenderMsg_NoBoundary, res); err != nil {
			d.log.Warnf("epoch %d observer: %v", res.Epoch, err)
		}
	}

	f := view.Compose(d.vp, d.ds, res, d.learner.Weights(), line, hasLine)
	if err := d.renderer.Render(f); err != nil {
		return errors.WithMessagef(err, "driver: render epoch %d", res.Epoch)
	}
	if err := d.bus.Publish(d.runID, common.LocalRenderMsg_Frame, f); err != nil {
		d.log.Warnf("epoch %d frame observer: %v", res.Epoch, err)
	}
	return nil
}

func (d *Driver) halt(sum Summary, interrupted bool) (Summary, error) {
	sum.Interrupted = interrupted
	if interrupted {
		d.log.Infof("stopped after %d epochs", sum.Epochs)
	} else {
		d.log.Warnf("epoch limit %d reached, %d misclassified", d.maxEpochs, sum.Final.Misclassified)
	}
	if err := d.bus.Publish(d.runID, common.LocalTrainMsg_Halted, sum.Final); err != nil {
		d.log.Warnf("halted observer: %v", err)
	}
	return sum, nil
}

// wait sleeps for one frame delay and reports false if ctx ended first.
func (d *Driver) wait(ctx context.Context) bool {
	if d.delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
