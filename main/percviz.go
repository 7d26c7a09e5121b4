package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"percviz/core/dataset"
	"percviz/core/driver"
	"percviz/core/render"
)

var flags *pflag.FlagSet

var (
	cfgPathFlag    string
	datasetFlag    string
	generateFlag   bool
	pointsFlag     int
	seedFlag       int64
	policyFlag     string
	separationFlag float64
	maxEpochsFlag  int
	delayFlag      time.Duration
	holdFlag       bool
	renderFlag     string
	framesFlag     string
	widthFlag      int
	heightFlag     int
	fitFlag        bool
	historyFlag    string
	logLevelFlag   string
	logPathFlag    string
	outFlag        string
)

func init() {
	resetFlags()
}

// Explicitly define a method to facilitate tests
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&cfgPathFlag, "config", "c", "",
		"config file, default percviz_config.yaml in $PERCVIZ_CFG_PATH")
	flags.StringVarP(&datasetFlag, "dataset", "d", "dataset.csv", "dataset CSV (x,y,label)")
	flags.BoolVarP(&generateFlag, "generate", "g", false, "train on generated points instead of a file")
	flags.IntVarP(&pointsFlag, "points", "n", 900, "number of generated points")
	flags.Int64Var(&seedFlag, "seed", 1, "generator seed")
	flags.StringVar(&policyFlag, "policy", string(dataset.PolicyBanded),
		fmt.Sprintf("generator policy: %s, %s or %s", dataset.PolicyBanded, dataset.PolicyShifted, dataset.PolicyMargin))
	flags.Float64Var(&separationFlag, "separation", 3, "generator noise band, shift or margin")
	flags.IntVarP(&maxEpochsFlag, "max-epochs", "m", 0, "stop after this many epochs, 0 for no limit")
	flags.DurationVar(&delayFlag, "delay", driver.DefaultFrameDelay, "pause between frames")
	flags.BoolVar(&holdFlag, "hold", false, "keep the final frame until interrupted")
	flags.StringVarP(&renderFlag, "render", "r", render.ModeTerminal,
		fmt.Sprintf("renderer: %s, %s or %s", render.ModeTerminal, render.ModePNG, render.ModeNone))
	flags.StringVar(&framesFlag, "frames", "frames", "output directory of the png renderer")
	flags.IntVar(&widthFlag, "width", 800, "window width in pixels")
	flags.IntVar(&heightFlag, "height", 600, "window height in pixels")
	flags.BoolVar(&fitFlag, "fit", false, "fit the view to the dataset extent")
	flags.StringVar(&historyFlag, "history", "", "write the per-epoch accuracy CSV here")
	flags.StringVar(&logLevelFlag, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&logPathFlag, "log-path", "", "rotated log file, empty for console only")
	flags.StringVarP(&outFlag, "out", "o", "", "output CSV, stdout when empty")
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			panic(fmt.Errorf("Could not find flag '%s' to attach to command '%s'", name, cmd.Name()))
		}
	}
}

func newMainCmd() *cobra.Command {
	mainCmd := &cobra.Command{
		Use:          "percviz",
		Short:        "perceptron training visualizer",
		SilenceUsage: true,
	}
	mainCmd.AddCommand(trainCMD())
	mainCmd.AddCommand(generateCMD())
	return mainCmd
}

func main() {
	if newMainCmd().Execute() != nil {
		os.Exit(1)
	}
}
