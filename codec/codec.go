// Package codec は生レコードを学習・推論共通の特徴量ベクトルに変換する。
//
// 変換は次の順に行う:
//
//  1. 2値カテゴリ列（mainroad など）を学習済みの対応表で0/1に変換
//  2. furnishingstatus を drop-first の指示変数に展開
//  3. 正準列順に並べ替え、存在しない列は0で埋める
//  4. 学習済みの平均・標準偏差で標準化（分散ゼロの列は0）
//
// 学習時と推論時で同じ Codec を使うことで、列順・エンコード・スケーリングが
// 完全に一致することを保証する。
package codec

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
	"github.com/YuminosukeSato/scigo-housing/preprocessing"
)

// 多値カテゴリ列と指示変数の列名接頭辞
const (
	OneHotColumn = dataset.ColFurnishingStatus
	OneHotPrefix = "furnishing"
)

// Codec は学習済みの特徴量エンコード状態
// 生成後は読み取り専用で、複数のゴルーチンから同時に使ってよい
type Codec struct {
	binary  []preprocessing.BinaryLabelEncoder
	onehot  preprocessing.OneHotEncoder
	columns []string
	index   map[string]int
	scaler  *preprocessing.StandardScaler
}

// Fit はレコード集合からエンコード状態を学習する
//
// 空のデータ、値が2種類でない2値列、カテゴリが2種類未満の furnishingstatus は
// InvalidDataError になる。同じ入力に対しては常に同じ状態を返す。
func Fit(records []dataset.Record) (*Codec, error) {
	if len(records) == 0 {
		return nil, errors.NewInvalidDataError("codec.Fit", "empty dataset")
	}

	c := &Codec{binary: make([]preprocessing.BinaryLabelEncoder, 0, len(dataset.BinaryColumns))}
	for _, col := range dataset.BinaryColumns {
		values, err := dataset.Column(records, col)
		if err != nil {
			return nil, err
		}
		enc, err := preprocessing.FitBinaryLabelEncoder(col, values)
		if err != nil {
			return nil, err
		}
		c.binary = append(c.binary, enc)
	}

	values, err := dataset.Column(records, OneHotColumn)
	if err != nil {
		return nil, err
	}
	c.onehot, err = preprocessing.FitOneHotEncoder(OneHotColumn, OneHotPrefix, values)
	if err != nil {
		return nil, err
	}
	c.setColumns(canonicalColumns(c.onehot))

	encoded, err := c.encodeBatch(records)
	if err != nil {
		return nil, err
	}
	c.scaler = preprocessing.NewStandardScaler()
	if err := c.scaler.Fit(encoded); err != nil {
		return nil, errors.Wrap(err, "codec.Fit: scaler")
	}

	logger := log.GetLoggerWithName("codec")
	for _, j := range c.scaler.ZeroVariance() {
		logger.Warn("Zero-variance column, standardized values are fixed to 0",
			log.ColumnKey, c.columns[j],
		)
	}
	logger.Debug("Codec fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, len(records),
		log.FeaturesKey, len(c.columns),
	)
	return c, nil
}

// Columns は正準列順の特徴量名を返す
func (c *Codec) Columns() []string {
	return append([]string(nil), c.columns...)
}

// NumFeatures は特徴量の数を返す
func (c *Codec) NumFeatures() int {
	return len(c.columns)
}

// Categories は furnishingstatus の学習済みカテゴリを返す（先頭がベースライン）
func (c *Codec) Categories() []string {
	return append([]string(nil), c.onehot.Categories...)
}

// Known は列の値が学習済みカテゴリに含まれるかを返す
// 数値列や未知の列名では false
func (c *Codec) Known(column, value string) bool {
	if column == c.onehot.Column {
		return c.onehot.Known(value)
	}
	for _, enc := range c.binary {
		if enc.Column == column {
			return value == enc.Classes[0] || value == enc.Classes[1]
		}
	}
	return false
}

// Encode はスケーリング前の特徴量ベクトルを返す
func (c *Codec) Encode(r dataset.Record) ([]float64, error) {
	derived := make(map[string]float64, len(c.columns))
	for _, col := range dataset.NumericColumns {
		v, err := r.Numeric(col)
		if err != nil {
			return nil, err
		}
		derived[col] = v
	}
	for _, enc := range c.binary {
		label, err := r.Categorical(enc.Column)
		if err != nil {
			return nil, err
		}
		code, err := enc.Encode(label)
		if err != nil {
			return nil, err
		}
		derived[enc.Column] = code
	}

	indicators, err := c.onehot.Encode(r.FurnishingStatus)
	if err != nil {
		return nil, err
	}
	for i, name := range c.onehot.FeatureNames() {
		derived[name] = indicators[i]
	}

	return c.reindex(derived), nil
}

// Transform は1件のレコードを標準化済みの特徴量ベクトルに変換する
// 結果の長さは常に len(Columns()) で、NaN を含まない
func (c *Codec) Transform(r dataset.Record) ([]float64, error) {
	encoded, err := c.Encode(r)
	if err != nil {
		return nil, err
	}
	out, err := c.scaler.TransformRow(encoded)
	if err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("codec.Transform", out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransformBatch は複数レコードを変換し、n_samples × n_features の行列を返す
func (c *Codec) TransformBatch(records []dataset.Record) (*mat.Dense, error) {
	if len(records) == 0 {
		return nil, errors.NewInvalidDataError("codec.TransformBatch", "no records")
	}
	X := mat.NewDense(len(records), len(c.columns), nil)
	for i, r := range records {
		row, err := c.Transform(r)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		X.SetRow(i, row)
	}
	return X, nil
}

// reindex は列名→値の対応を正準列順に並べる
// 正準列に対応する値がなければ0で埋め、正準列にない値は捨てる
func (c *Codec) reindex(derived map[string]float64) []float64 {
	out := make([]float64, len(c.columns))
	for name, v := range derived {
		if j, ok := c.index[name]; ok {
			out[j] = v
		}
	}
	return out
}

func (c *Codec) encodeBatch(records []dataset.Record) (*mat.Dense, error) {
	X := mat.NewDense(len(records), len(c.columns), nil)
	for i, r := range records {
		row, err := c.Encode(r)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		X.SetRow(i, row)
	}
	return X, nil
}

func (c *Codec) setColumns(columns []string) {
	c.columns = columns
	c.index = make(map[string]int, len(columns))
	for j, name := range columns {
		c.index[name] = j
	}
}

func canonicalColumns(onehot preprocessing.OneHotEncoder) []string {
	cols := make([]string, 0, len(dataset.NumericColumns)+len(dataset.BinaryColumns)+len(onehot.Categories)-1)
	cols = append(cols, dataset.NumericColumns...)
	cols = append(cols, dataset.BinaryColumns...)
	cols = append(cols, onehot.FeatureNames()...)
	return cols
}
