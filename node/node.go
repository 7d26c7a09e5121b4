package node

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"percviz/common"
	"percviz/core/config"
	"percviz/core/driver"
	"percviz/core/ml"
	"percviz/core/msgbus"
	"percviz/core/render"
	"percviz/core/report"
	"percviz/core/view"
)

// PercvizNode wires one training run together from a LocalConfig.
type PercvizNode struct {
	conf  *config.LocalConfig
	runID string
	log   common.Logger

	ds       *ml.Dataset
	learner  *ml.Perceptron
	vp       view.Viewport
	renderer render.Renderer
	msgBus   msgbus.MessageBus
	history  *report.Recorder
	driver   *driver.Driver
}

// Init builds every component. Progress lines go to out, stdout when nil.
func (n *PercvizNode) Init(c *config.LocalConfig, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	n.conf = c
	n.runID = uuid.NewString()

	logConfig, err := c.LogConfig()
	if err != nil {
		return errors.WithMessage(err, "get log config")
	}
	if err := common.SetLogConfig(logConfig); err != nil {
		return errors.WithMessage(err, "set log config")
	}
	n.log = common.GetLoggerWithRunID(common.MODULE_NODE, n.runID)
	if c.File != "" {
		n.log.Infof("config loaded from %s", c.File)
	}

	// the bus comes first so observers are in place before training starts
	n.msgBus = msgbus.NewMessageBus()
	n.history = report.NewRecorder()
	n.msgBus.Register(common.LocalTrainMsg, report.NewConsole(out))
	n.msgBus.Register(common.LocalTrainMsg, n.history)

	n.ds, err = c.DatasetProvider().Dataset()
	if err != nil {
		return errors.WithMessage(err, "load dataset")
	}
	common.GetLoggerWithRunID(common.MODULE_DATASET, n.runID).Infof("%d points, %d labelled 0, %d labelled 1",
		n.ds.Len(), n.ds.Count(ml.Label0), n.ds.Count(ml.Label1))

	n.learner, err = ml.NewPerceptron(
		ml.WithWeights(c.InitialWeights()),
		ml.WithLearningRate(c.Train.LearningRate),
	)
	if err != nil {
		return errors.WithMessage(err, "new perceptron")
	}
	common.GetLoggerWithRunID(common.MODULE_LEARNER, n.runID).Infof("initial weights %+v, learning rate %v",
		n.learner.Weights(), n.learner.LearningRate())

	n.vp, err = newViewport(c.View, n.ds)
	if err != nil {
		return errors.WithMessage(err, "new viewport")
	}

	n.renderer, err = render.New(render.Config{
		Mode:    c.Render.Mode,
		Out:     out,
		Cols:    c.Render.Cols,
		Rows:    c.Render.Rows,
		Clear:   c.Render.Clear,
		Dir:     c.Render.Dir,
		Workers: c.Render.Workers,
	})
	if err != nil {
		return errors.WithMessage(err, "new renderer")
	}
	common.GetLoggerWithRunID(common.MODULE_RENDER, n.runID).Infof("renderer %s, viewport %dx%d",
		c.Render.Mode, n.vp.Width, n.vp.Height)

	n.driver, err = driver.New(n.learner, n.ds, n.vp, n.renderer, n.msgBus,
		common.GetLoggerWithRunID(common.MODULE_DRIVER, n.runID),
		driver.WithRunID(n.runID),
		driver.WithMaxEpochs(c.Train.MaxEpochs),
		driver.WithFrameDelay(c.Train.FrameDelay),
		driver.WithHold(c.Train.Hold),
	)
	if err != nil {
		n.renderer.Close()
		return errors.WithMessage(err, "new driver")
	}
	return nil
}

func newViewport(c config.ViewConfig, ds *ml.Dataset) (view.Viewport, error) {
	switch {
	case c.Fit:
		return view.FitViewport(c.Width, c.Height, ds, c.Margin)
	case c.Scale > 0:
		return view.NewScaledViewport(c.Width, c.Height, c.Scale)
	default:
		return view.NewViewport(c.Width, c.Height, c.WorldRange)
	}
}

// Start runs the driver until it stops, then flushes the renderer and
// writes the accuracy history when history.path is set. Hitting the epoch
// cap is reported as driver.ErrMaxEpochs alongside a valid summary.
func (n *PercvizNode) Start(ctx context.Context) (driver.Summary, error) {
	if n.driver == nil {
		return driver.Summary{}, errors.New("node: not initialized")
	}
	n.log.Infof("run %s started", n.runID)
	sum, runErr := n.driver.Run(ctx)

	if err := n.renderer.Close(); err != nil && runErr == nil {
		runErr = errors.WithMessage(err, "close renderer")
	}
	if path := n.conf.History.Path; path != "" {
		if err := n.history.Save(path); err != nil {
			n.log.Errorf("save history to %s: %v", path, err)
			if runErr == nil {
				runErr = err
			}
		} else {
			n.log.Infof("history of %d epochs written to %s", len(n.history.Results()), path)
		}
	}
	if best, ok := n.history.Best(); ok {
		n.log.Infof("run %s finished after %d epochs, best accuracy %.4f at epoch %d",
			n.runID, sum.Epochs, best.Accuracy, best.Epoch)
	}
	return sum, runErr
}

func (n *PercvizNode) RunID() string {
	return n.runID
}

func (n *PercvizNode) History() *report.Recorder {
	return n.history
}
