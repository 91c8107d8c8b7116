// Package tree provides a CART decision tree regressor using the squared error criterion.
package tree

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// leafFeature marks a leaf node.
const leafFeature = -1

// Node is one node of a fitted tree. Nodes are stored in a flat slice and
// reference their children by index; a sample goes left when x[Feature] <= Threshold.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	NSamples  int
	Impurity  float64
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.Feature == leafFeature }

// DecisionTreeRegressor is a CART regressor minimizing the within-node squared error.
type DecisionTreeRegressor struct {
	model.BaseEstimator

	// Hyperparameters
	MaxDepth        int   // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit int   // minimum samples to attempt a split
	MinSamplesLeaf  int   // minimum samples required in each leaf
	MaxFeatures     int   // 0 => consider all features at every split
	RandomState     int64 // seed for the feature visiting order

	// Fitted state
	Nodes              []Node
	NFeatures          int
	FeatureImportances []float64
}

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth sets the maximum depth. 0 means unlimited.
func WithMaxDepth(d int) Option { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum number of samples needed to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}

// WithMaxFeatures sets how many randomly chosen features are searched per split.
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeRegressor) { t.MaxFeatures = k } }

// WithRandomState sets the seed.
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeRegressor) { t.RandomState = seed }
}

// NewDecisionTreeRegressor returns a regressor with sklearn-like defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree on X (n_samples × n_features) and y (n_samples × 1).
func (t *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	rows, target, err := Rows("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(rows, target, idx)
}

// FitIndices grows the tree on the samples listed in idx. Repeated indices act as
// sample weights, which is how a bootstrap sample is passed in without copying X.
func (t *DecisionTreeRegressor) FitIndices(X [][]float64, y []float64, idx []int) error {
	if err := t.validateParams(); err != nil {
		return err
	}
	if len(idx) == 0 || len(X) == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}

	t.Reset()
	t.NFeatures = len(X[0])
	t.Nodes = t.Nodes[:0]

	b := &builder{
		tree:        t,
		X:           X,
		y:           y,
		rng:         rand.New(rand.NewSource(t.RandomState)),
		importances: make([]float64, t.NFeatures),
	}
	b.grow(append([]int(nil), idx...), 0)

	t.FeatureImportances = normalize(b.importances)
	t.SetFitted()
	return nil
}

// Predict returns the leaf mean for every row of X as an n×1 matrix.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Predict", t.NFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		out.Set(i, 0, t.PredictRow(row))
	}
	return out, nil
}

// PredictRow returns the prediction for a single feature vector.
// The tree must be fitted and x must have NFeatures entries.
func (t *DecisionTreeRegressor) PredictRow(x []float64) float64 {
	n := t.Nodes[0]
	for !n.IsLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n.Value
}

// GetDepth returns the depth of the fitted tree (a lone root has depth 0).
func (t *DecisionTreeRegressor) GetDepth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var depth func(i int) int
	depth = func(i int) int {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		l, r := depth(n.Left), depth(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return depth(0)
}

// GetNLeaves returns the number of leaves.
func (t *DecisionTreeRegressor) GetNLeaves() int {
	leaves := 0
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			leaves++
		}
	}
	return leaves
}

// GetFeatureImportances returns the normalized total squared-error reduction per feature.
func (t *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	return append([]float64(nil), t.FeatureImportances...)
}

// GetParams returns the hyperparameters.
func (t *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         "squared_error",
		"max_depth":         t.MaxDepth,
		"min_samples_split": t.MinSamplesSplit,
		"min_samples_leaf":  t.MinSamplesLeaf,
		"max_features":      t.MaxFeatures,
		"random_state":      t.RandomState,
	}
}

// SetParams updates hyperparameters by name.
func (t *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	for k, v := range params {
		switch k {
		case "max_depth", "min_samples_split", "min_samples_leaf", "max_features":
			n, ok := v.(int)
			if !ok {
				return errors.NewValidationError(k, "must be an int", v)
			}
			switch k {
			case "max_depth":
				t.MaxDepth = n
			case "min_samples_split":
				t.MinSamplesSplit = n
			case "min_samples_leaf":
				t.MinSamplesLeaf = n
			default:
				t.MaxFeatures = n
			}
		case "random_state":
			n, ok := v.(int64)
			if !ok {
				return errors.NewValidationError(k, "must be an int64", v)
			}
			t.RandomState = n
		default:
			return errors.NewValidationError(k, "unknown parameter", v)
		}
	}
	return t.validateParams()
}

func (t *DecisionTreeRegressor) String() string {
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, random_state=%d)", t.MaxDepth, t.RandomState)
}

func (t *DecisionTreeRegressor) validateParams() error {
	switch {
	case t.MaxDepth < 0:
		return errors.NewValidationError("max_depth", "must be >= 0", t.MaxDepth)
	case t.MinSamplesSplit < 2:
		return errors.NewValidationError("min_samples_split", "must be >= 2", t.MinSamplesSplit)
	case t.MinSamplesLeaf < 1:
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", t.MinSamplesLeaf)
	case t.MaxFeatures < 0:
		return errors.NewValidationError("max_features", "must be >= 0", t.MaxFeatures)
	}
	return nil
}

// Rows validates X and y and copies them into row slices.
func Rows(op string, X, y mat.Matrix) ([][]float64, []float64, error) {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return nil, nil, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, nil, errors.NewValueError(op, "y must be a column vector")
	}

	rows := make([][]float64, r)
	target := make([]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = mat.Row(nil, i, X)
		target[i] = y.At(i, 0)
	}
	if err := errors.CheckNumericalStability(op, target); err != nil {
		return nil, nil, err
	}
	return rows, target, nil
}

type builder struct {
	tree        *DecisionTreeRegressor
	X           [][]float64
	y           []float64
	rng         *rand.Rand
	importances []float64
}

type split struct {
	feature   int
	threshold float64
	childSSE  float64
}

// grow appends the subtree for idx and returns the index of its root node.
func (b *builder) grow(idx []int, depth int) int {
	mean, sse := meanSSE(b.y, idx)
	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Feature:  leafFeature,
		Value:    mean,
		NSamples: len(idx),
		Impurity: sse / float64(len(idx)),
	})

	t := b.tree
	if (t.MaxDepth > 0 && depth >= t.MaxDepth) ||
		len(idx) < t.MinSamplesSplit ||
		len(idx) < 2*t.MinSamplesLeaf ||
		sse <= 0 {
		return id
	}

	s, ok := b.bestSplit(idx, mean, sse)
	if !ok {
		return id
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.X[i][s.feature] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	b.importances[s.feature] += sse - s.childSSE

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	n := &b.tree.Nodes[id]
	n.Feature, n.Threshold, n.Left, n.Right = s.feature, s.threshold, l, r
	return id
}

// bestSplit scans every candidate feature for the threshold with the lowest
// summed child squared error. Targets are centered on the node mean to keep
// the running sums small.
func (b *builder) bestSplit(idx []int, mean, sse float64) (split, bool) {
	nFeatures := b.tree.NFeatures
	features := b.rng.Perm(nFeatures)
	if k := b.tree.MaxFeatures; k > 0 && k < nFeatures {
		features = features[:k]
	}

	minLeaf := b.tree.MinSamplesLeaf
	n := len(idx)
	best := split{childSSE: sse}
	found := false

	sorted := make([]int, n)
	for _, f := range features {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		var totSum, totSq float64
		for _, i := range sorted {
			d := b.y[i] - mean
			totSum += d
			totSq += d * d
		}

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			d := b.y[sorted[k]] - mean
			leftSum += d
			leftSq += d * d

			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k+1), float64(n-k-1)
			if k+1 < minLeaf || n-k-1 < minLeaf {
				continue
			}

			rightSum, rightSq := totSum-leftSum, totSq-leftSq
			child := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if child < best.childSSE-1e-12*sse {
				threshold := lo + (hi-lo)/2
				if threshold == hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, childSSE: child}
				found = true
			}
		}
	}
	return best, found
}

func meanSSE(y []float64, idx []int) (float64, float64) {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	mean := sum / float64(len(idx))
	var sse float64
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}

func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	var total float64
	for _, x := range v {
		total += x
	}
	if total <= 0 || math.IsNaN(total) {
		return out
	}
	for i, x := range v {
		out[i] = x / total
	}
	return out
}
