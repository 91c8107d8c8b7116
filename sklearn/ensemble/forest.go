// Package ensemble provides a bagged random forest of CART regression trees.
package ensemble

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/core/parallel"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/sklearn/tree"
)

// RandomForestRegressor averages the predictions of trees fitted on bootstrap samples.
//
// Every tree gets its own seed drawn up front from RandomState, so the fitted
// forest is the same whether trees are grown sequentially or in parallel.
type RandomForestRegressor struct {
	model.BaseEstimator

	// Hyperparameters
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features
	Bootstrap       bool
	RandomState     int64

	// Fitted state
	Trees              []*tree.DecisionTreeRegressor
	NFeatures          int
	FeatureImportances []float64
}

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option { return func(rf *RandomForestRegressor) { rf.NEstimators = n } }

// WithMaxDepth sets the maximum depth of each tree. 0 means unlimited.
func WithMaxDepth(d int) Option { return func(rf *RandomForestRegressor) { rf.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum samples needed to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestRegressor) { rf.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestRegressor) { rf.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features searched per split.
func WithMaxFeatures(k int) Option { return func(rf *RandomForestRegressor) { rf.MaxFeatures = k } }

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) Option { return func(rf *RandomForestRegressor) { rf.Bootstrap = b } }

// WithRandomState sets the master seed.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestRegressor) { rf.RandomState = seed }
}

// NewRandomForestRegressor returns a forest with sklearn-like defaults.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit grows NEstimators trees in parallel.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	if rf.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be >= 1", rf.NEstimators)
	}
	rows, target, err := tree.Rows("RandomForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	n := len(rows)

	master := rand.New(rand.NewSource(rf.RandomState))
	seeds := make([]int64, rf.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*tree.DecisionTreeRegressor, rf.NEstimators)
	err = parallel.Each(rf.NEstimators, func(i int) error {
		treeRand := rand.New(rand.NewSource(seeds[i]))
		sample := make([]int, n)
		for j := range sample {
			if rf.Bootstrap {
				sample[j] = treeRand.Intn(n)
			} else {
				sample[j] = j
			}
		}

		t := tree.NewDecisionTreeRegressor(
			tree.WithMaxDepth(rf.MaxDepth),
			tree.WithMinSamplesSplit(rf.MinSamplesSplit),
			tree.WithMinSamplesLeaf(rf.MinSamplesLeaf),
			tree.WithMaxFeatures(rf.MaxFeatures),
			tree.WithRandomState(treeRand.Int63()),
		)
		if err := t.FitIndices(rows, target, sample); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}

	rf.Reset()
	rf.Trees = trees
	rf.NFeatures = len(rows[0])
	rf.FeatureImportances = make([]float64, rf.NFeatures)
	for _, t := range trees {
		for j, v := range t.FeatureImportances {
			rf.FeatureImportances[j] += v / float64(len(trees))
		}
	}
	rf.SetFitted()
	return nil
}

// Predict returns the mean tree prediction for each row as an n×1 matrix.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestRegressor.Predict", rf.NFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		var sum float64
		for _, t := range rf.Trees {
			sum += t.PredictRow(row)
		}
		out.Set(i, 0, sum/float64(len(rf.Trees)))
	}
	return out, nil
}

// GetFeatureImportances returns the importances averaged over trees.
func (rf *RandomForestRegressor) GetFeatureImportances() []float64 {
	return append([]float64(nil), rf.FeatureImportances...)
}

// GetParams returns the hyperparameters.
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.NEstimators,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"min_samples_leaf":  rf.MinSamplesLeaf,
		"max_features":      rf.MaxFeatures,
		"bootstrap":         rf.Bootstrap,
		"random_state":      rf.RandomState,
	}
}

func (rf *RandomForestRegressor) String() string {
	return fmt.Sprintf("RandomForestRegressor(n_estimators=%d, max_depth=%d, random_state=%d)",
		rf.NEstimators, rf.MaxDepth, rf.RandomState)
}
