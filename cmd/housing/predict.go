package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/serving"
)

func newPredictCmd(a *app) *cobra.Command {
	var dir string
	r := dataset.Record{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the price of a single listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.ArtifactDir
			}
			s, err := serving.Load(dir, a.cfg.ServingOptions()...)
			if err != nil {
				return errors.New(serving.Message(err))
			}
			p, err := serving.SafePredict(s, r)
			if err != nil {
				return errors.New(serving.Message(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model: %s\n", s.ModelName())
			fmt.Fprintf(out, "Predicted price: %.0f\n", p.Point)
			fmt.Fprintf(out, "Estimated range: %.0f - %.0f\n", p.Lower, p.Upper)
			diff := p.Point - s.MeanPrice()
			fmt.Fprintf(out, "Compared to average price %.0f: %+.0f (%+.1f%%)\n", s.MeanPrice(), diff, diff/s.MeanPrice()*100)
			if !p.InObservedRange {
				lo, hi := s.PriceRange()
				fmt.Fprintf(out, "Note: outside the training price range %.0f - %.0f\n", lo, hi)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&dir, "dir", "", "artifact directory (default from config)")
	f.Float64Var(&r.Area, "area", 6000, "area in square feet")
	f.Float64Var(&r.Bedrooms, "bedrooms", 3, "number of bedrooms")
	f.Float64Var(&r.Bathrooms, "bathrooms", 2, "number of bathrooms")
	f.Float64Var(&r.Stories, "stories", 2, "number of stories")
	f.Float64Var(&r.Parking, "parking", 2, "parking spaces")
	f.StringVar(&r.MainRoad, "mainroad", "yes", "on a main road (yes/no)")
	f.StringVar(&r.GuestRoom, "guestroom", "yes", "has a guest room (yes/no)")
	f.StringVar(&r.Basement, "basement", "yes", "has a basement (yes/no)")
	f.StringVar(&r.HotWaterHeating, "hotwaterheating", "no", "has hot water heating (yes/no)")
	f.StringVar(&r.AirConditioning, "airconditioning", "yes", "has air conditioning (yes/no)")
	f.StringVar(&r.PrefArea, "prefarea", "yes", "in a preferred area (yes/no)")
	f.StringVar(&r.FurnishingStatus, "furnishing", "furnished", "furnished, semi-furnished or unfurnished")
	return cmd
}
