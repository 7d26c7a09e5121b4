package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"percviz/core/config"
	"percviz/node"
)

func train(cmd *cobra.Command) error {
	lc, err := config.InitLocalConfig(cmd)
	if err != nil {
		return err
	}

	nodeInstance := node.PercvizNode{}
	if err := nodeInstance.Init(lc, cmd.OutOrStdout()); err != nil {
		return err
	}

	// Ctrl-C is the quit request; it is honored between epochs
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = nodeInstance.Start(ctx)
	return err
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func trainCMD() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train a perceptron and draw every epoch",
		Long:  "train a two-input perceptron on a labelled point set, drawing the points and the decision boundary after each epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return train(cmd)
		},
	}
	flagList := []string{
		"config",
		"dataset",
		"generate",
		"points",
		"seed",
		"policy",
		"separation",
		"max-epochs",
		"delay",
		"hold",
		"render",
		"frames",
		"width",
		"height",
		"fit",
		"history",
		"log-level",
		"log-path",
	}
	attachFlags(trainCmd, flagList)
	return trainCmd
}
