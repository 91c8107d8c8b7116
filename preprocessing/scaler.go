package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// zeroVarianceTol 以下の標準偏差は分散ゼロとして扱う
const zeroVarianceTol = 1e-12

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
//
// 分散ゼロの列は (x - mean) / std を計算せず、常に0を出力する。
// 学習時に一定だった列に推論時に別の値が来ても0になる。
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（母標準偏差、ddof=0）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int
}

var _ model.Transformer = (*StandardScaler)(nil)

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// NewStandardScalerFromParams は保存済みの平均・標準偏差から学習済みスケーラーを復元する
func NewStandardScalerFromParams(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, errors.NewValueError("NewStandardScalerFromParams", "empty parameters")
	}
	if len(mean) != len(scale) {
		return nil, errors.NewDimensionError("NewStandardScalerFromParams", len(mean), len(scale), 1)
	}
	for j, s := range scale {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, errors.NewValidationError(fmt.Sprintf("scale[%d]", j), "must be a finite non-negative number", s)
		}
	}
	s := &StandardScaler{
		Mean:      append([]float64(nil), mean...),
		Scale:     append([]float64(nil), scale...),
		NFeatures: len(mean),
	}
	s.SetFitted()
	return s, nil
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
//
// パラメータ:
//   - X: 訓練データ (n_samples × n_features の行列)
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		s.Mean[j] = sum / float64(r)

		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := X.At(i, j) - s.Mean[j]
			sumSquares += diff * diff
		}
		s.Scale[j] = math.Sqrt(sumSquares / float64(r))
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, s.standardize(j, X.At(i, j)))
		}
	}
	return result, nil
}

// TransformRow は1行分のベクトルを標準化する（推論時用）
// 入力スライスは変更しない
func (s *StandardScaler) TransformRow(x []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "TransformRow")
	}
	if len(x) != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.TransformRow", s.NFeatures, len(x), 1)
	}

	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = s.standardize(j, v)
	}
	return out, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
// 分散ゼロの列は平均値に戻る
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// ZeroVariance は分散ゼロと判定された列のインデックスを返す
func (s *StandardScaler) ZeroVariance() []int {
	var idx []int
	for j, sc := range s.Scale {
		if sc <= zeroVarianceTol {
			idx = append(idx, j)
		}
	}
	return idx
}

func (s *StandardScaler) standardize(j int, v float64) float64 {
	if s.Scale[j] <= zeroVarianceTol {
		return 0
	}
	return (v - s.Mean[j]) / s.Scale[j]
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}
