// Package housing is a housing price regression pipeline for Go: exploratory
// analysis, model training and selection, and single-listing price prediction.
//
// The training side reads the housing CSV, splits it 80/20 with a fixed seed,
// fits a feature codec, trains three candidate regressors (linear regression,
// random forest, decision tree) and keeps the one with the best held-out R².
// The serving side loads the persisted codec and model once and answers
// single-record predictions with a ±10% display band.
//
// # Installation
//
//	go install github.com/YuminosukeSato/scigo-housing/cmd/housing@latest
//
// # Quick Start
//
// From the command line:
//
//	housing train --data Housing.csv --out artifacts
//	housing predict --area 6000 --bedrooms 3 --furnishing furnished
//	housing eda --data Housing.csv --plots plots
//
// From Go:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scigo-housing/dataset"
//	    "github.com/YuminosukeSato/scigo-housing/pipeline"
//	    "github.com/YuminosukeSato/scigo-housing/serving"
//	)
//
//	func main() {
//	    records, err := dataset.LoadCSV("Housing.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    res, err := pipeline.Train(context.Background(), records, pipeline.DefaultOptions())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := pipeline.Persist("artifacts", res); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    s, err := serving.Load("artifacts")
//	    if err != nil {
//	        log.Fatal(serving.Message(err))
//	    }
//	    p, err := serving.PredictOne(s, records[0])
//	    if err != nil {
//	        log.Fatal(serving.Message(err))
//	    }
//	    fmt.Printf("%.0f (%.0f - %.0f)\n", p.Point, p.Lower, p.Upper)
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - dataset: CSV loading, typed records, seeded train/test split
//   - preprocessing: StandardScaler, binary label and one-hot encoders
//   - codec: the fitted feature codec and its JSON artifacts
//   - linear: ordinary least squares regression
//   - sklearn/tree: CART regression tree
//   - sklearn/ensemble: random forest regressor
//   - metrics: RMSE, R², MAE
//   - pipeline: training, evaluation, selection and artifact persistence
//   - serving: artifact loading and single-record prediction
//   - eda: descriptive statistics, correlations, outliers and charts
//   - config: YAML, .env and environment configuration
//   - core/model: estimator interfaces, base types and gob persistence
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # License
//
// Released under the MIT License.
package housing
