package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"percviz/core/config"
	"percviz/core/dataset"
)

func generate(cmd *cobra.Command) error {
	lc, err := config.InitLocalConfig(cmd)
	if err != nil {
		return err
	}

	ds, err := lc.Generator().Dataset()
	if err != nil {
		return err
	}
	if outFlag == "" {
		return dataset.Write(cmd.OutOrStdout(), ds)
	}
	if err := dataset.Save(outFlag, ds); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d points to %s\n", ds.Len(), outFlag)
	return nil
}

func generateCMD() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "write a generated dataset as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return generate(cmd)
		},
	}
	flagList := []string{
		"config",
		"points",
		"seed",
		"policy",
		"separation",
		"out",
	}
	attachFlags(generateCmd, flagList)
	return generateCmd
}
