package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// OneHotEncoder は多値カテゴリ列を k-1 個の指示変数列に展開する（drop-first）
// Categories はソート済みで、Categories[0] がベースライン（全指示変数が0）になる
type OneHotEncoder struct {
	Column     string
	Prefix     string
	Categories []string
}

// FitOneHotEncoder は列のカテゴリ一覧を学習する
// 指示変数列を1つ以上作るため、カテゴリは2つ以上必要
func FitOneHotEncoder(column, prefix string, values []string) (OneHotEncoder, error) {
	categories := Distinct(values)
	if len(categories) < 2 {
		return OneHotEncoder{}, errors.NewInvalidDataErrorf("FitOneHotEncoder",
			"column %q has %d distinct values %v, want at least 2", column, len(categories), categories)
	}
	return OneHotEncoder{Column: column, Prefix: prefix, Categories: categories}, nil
}

// NewOneHotEncoder は保存済みのカテゴリからエンコーダーを復元する
func NewOneHotEncoder(column, prefix string, categories []string) (OneHotEncoder, error) {
	if len(categories) < 2 {
		return OneHotEncoder{}, errors.NewValidationError(column, "one-hot encoder needs at least 2 categories", categories)
	}
	if !sort.StringsAreSorted(categories) || len(Distinct(categories)) != len(categories) {
		return OneHotEncoder{}, errors.NewValidationError(column, "categories must be distinct and sorted", categories)
	}
	return OneHotEncoder{Column: column, Prefix: prefix, Categories: append([]string(nil), categories...)}, nil
}

// Baseline は落とされたカテゴリを返す
func (e OneHotEncoder) Baseline() string {
	return e.Categories[0]
}

// NonBaseline は指示変数列を持つカテゴリを列順で返す
func (e OneHotEncoder) NonBaseline() []string {
	return e.Categories[1:]
}

// FeatureNames は指示変数の列名を返す（例: "furnishing_unfurnished"）
func (e OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, len(e.Categories)-1)
	for _, c := range e.NonBaseline() {
		names = append(names, e.Prefix+"_"+c)
	}
	return names
}

// Encode は FeatureNames と同じ順序の指示変数ベクトルを返す
// Categories にない値はベースライン扱いにせず UnknownCategoryError を返す
func (e OneHotEncoder) Encode(value string) ([]float64, error) {
	if !e.Known(value) {
		return nil, errors.NewUnknownCategoryError(e.Column, value, e.Categories)
	}
	return OneHot(value, e.NonBaseline()), nil
}

// Known は値が学習済みカテゴリに含まれるかを返す
func (e OneHotEncoder) Known(value string) bool {
	i := sort.SearchStrings(e.Categories, value)
	return i < len(e.Categories) && e.Categories[i] == value
}

// OneHot は nonBaseline の各要素について、category と一致すれば1、そうでなければ0を返す
// 結果の長さはカテゴリに依存しないため、1件の入力でも全ての指示変数列がそろう
func OneHot(category string, nonBaseline []string) []float64 {
	out := make([]float64, len(nonBaseline))
	for i, c := range nonBaseline {
		if c == category {
			out[i] = 1
		}
	}
	return out
}
