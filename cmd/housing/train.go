package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pipeline"
)

func newTrainCmd(a *app) *cobra.Command {
	var dataPath, outDir string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the candidate models and persist the best one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				dataPath = a.cfg.DataPath
			}
			if outDir == "" {
				outDir = a.cfg.ArtifactDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTrain(ctx, cmd, a, dataPath, outDir)
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "housing CSV (default from config)")
	cmd.Flags().StringVar(&outDir, "out", "", "artifact directory (default from config)")
	return cmd
}

func runTrain(ctx context.Context, cmd *cobra.Command, a *app, dataPath, outDir string) error {
	records, err := dataset.LoadCSV(dataPath)
	if err != nil {
		return err
	}
	res, err := pipeline.Train(ctx, records, a.cfg.PipelineOptions())
	if err != nil {
		return err
	}
	if err := pipeline.Persist(outDir, res); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Model\tTrain RMSE\tTest RMSE\tTrain R2\tTest R2\tTrain MAE\tTest MAE")
	for _, e := range res.Evaluations {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.4f\t%.4f\t%.2f\t%.2f\n",
			e.Name, e.TrainRMSE, e.TestRMSE, e.TrainR2, e.TestR2, e.TrainMAE, e.TestMAE)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	best := res.BestEvaluation()
	fmt.Fprintf(out, "\nBest model: %s (test R2 %.4f)\n", res.ModelName, best.TestR2)
	if res.BelowFloor {
		fmt.Fprintf(out, "Warning: test R2 is below %.2f\n", a.cfg.Training.MinTestR2)
	}
	fmt.Fprintf(out, "Artifacts saved to %s\n", outDir)
	return nil
}
