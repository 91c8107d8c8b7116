package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/eda"
)

func newEDACmd(a *app) *cobra.Command {
	var dataPath, plotDir string
	var noPlots bool
	cmd := &cobra.Command{
		Use:   "eda",
		Short: "Print an exploratory analysis of the dataset and save charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				dataPath = a.cfg.DataPath
			}
			if plotDir == "" {
				plotDir = a.cfg.PlotDir
			}

			records, err := dataset.LoadCSV(dataPath)
			if err != nil {
				return err
			}
			rep, err := eda.Analyze(records)
			if err != nil {
				return err
			}
			if err := rep.WriteText(cmd.OutOrStdout()); err != nil {
				return err
			}
			if noPlots {
				return nil
			}
			saved, err := eda.Plot(records, rep, plotDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d plots saved to %s\n", len(saved), plotDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "housing CSV (default from config)")
	cmd.Flags().StringVar(&plotDir, "plots", "", "chart output directory (default from config)")
	cmd.Flags().BoolVar(&noPlots, "no-plots", false, "skip chart generation")
	return cmd
}
