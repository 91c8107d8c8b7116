package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/core/parallel"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// LinearRegression は最小二乗法による線形回帰モデル
//
// 係数は特異値分解による最小ノルム解として求める。
// 分散ゼロの特徴量などで計画行列がランク落ちしていても学習できる。
type LinearRegression struct {
	model.BaseEstimator

	Coef      []float64 // 係数
	Intercept float64   // 切片
	NFeatures int       // 特徴量の数
	Rank      int       // 計画行列のランク

	FitIntercept bool
	RCond        float64
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{FitIntercept: true, RCond: 1e-10}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
// min ||[1, X] w - y||² を解く
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	offset := 0
	if lr.FitIntercept {
		offset = 1
	}

	// 切片項のために X に 1 の列を追加: [1, X]
	design := mat.NewDense(r, c+offset, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return errors.NewModelError("LinearRegression.Fit", "SVD factorization failed", errors.ErrSingularMatrix)
	}
	rank := svd.Rank(lr.RCond)
	if rank == 0 {
		return errors.NewModelError("LinearRegression.Fit", "design matrix has rank 0", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var w mat.VecDense
	svd.SolveVecTo(&w, yVec, rank)

	coef := make([]float64, c+offset)
	for i := range coef {
		coef[i] = w.AtVec(i)
	}
	if err := errors.CheckNumericalStability("LinearRegression.Fit", coef); err != nil {
		return err
	}

	lr.Intercept = 0
	if offset == 1 {
		lr.Intercept = coef[0]
	}
	lr.Coef = coef[offset:]
	lr.NFeatures = c
	lr.Rank = rank
	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// y = X * coef + intercept
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Coef[j]
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// GetParams はハイパーパラメータを返す
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.FitIntercept,
		"rcond":         lr.RCond,
	}
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return "LinearRegression()"
	}
	return fmt.Sprintf("LinearRegression(n_features=%d, rank=%d)", lr.NFeatures, lr.Rank)
}
