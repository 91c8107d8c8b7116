package codec

import (
	"fmt"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/preprocessing"
)

// State は Codec のシリアライズ可能な表現
type State struct {
	Binary  map[string][]string `json:"binary"`
	OneHot  OneHotState         `json:"onehot"`
	Columns []string            `json:"columns"`
	Mean    []float64           `json:"mean"`
	Scale   []float64           `json:"scale"`
}

// OneHotState は多値カテゴリ列の学習済みカテゴリ（ソート済み、先頭がベースライン）
type OneHotState struct {
	Column     string   `json:"column"`
	Prefix     string   `json:"prefix"`
	Categories []string `json:"categories"`
}

// State は現在の状態のコピーを返す
func (c *Codec) State() State {
	s := State{
		Binary: make(map[string][]string, len(c.binary)),
		OneHot: OneHotState{
			Column:     c.onehot.Column,
			Prefix:     c.onehot.Prefix,
			Categories: append([]string(nil), c.onehot.Categories...),
		},
		Columns: c.Columns(),
		Mean:    append([]float64(nil), c.scaler.Mean...),
		Scale:   append([]float64(nil), c.scaler.Scale...),
	}
	for _, enc := range c.binary {
		s.Binary[enc.Column] = []string{enc.Classes[0], enc.Classes[1]}
	}
	return s
}

// FromState は保存済みの状態から Codec を復元する
// 2値列の対応表はちょうど2ラベルでなければならず、
// 列名はエンコード状態から導かれる正準列順と一致しなければならない
func FromState(s State) (*Codec, error) {
	c := &Codec{binary: make([]preprocessing.BinaryLabelEncoder, 0, len(dataset.BinaryColumns))}
	for _, col := range dataset.BinaryColumns {
		classes, ok := s.Binary[col]
		if !ok {
			return nil, errors.NewValidationError("binary", fmt.Sprintf("missing encoder for %q", col), nil)
		}
		enc, err := preprocessing.NewBinaryLabelEncoder(col, classes)
		if err != nil {
			return nil, err
		}
		c.binary = append(c.binary, enc)
	}
	if len(s.Binary) != len(dataset.BinaryColumns) {
		return nil, errors.NewValidationError("binary", "unexpected encoder columns", keys(s.Binary))
	}

	onehot, err := preprocessing.NewOneHotEncoder(s.OneHot.Column, s.OneHot.Prefix, s.OneHot.Categories)
	if err != nil {
		return nil, err
	}
	if onehot.Column != OneHotColumn {
		return nil, errors.NewValidationError("onehot.column", "unsupported column", onehot.Column)
	}
	c.onehot = onehot

	want := canonicalColumns(onehot)
	if !equalStrings(want, s.Columns) {
		return nil, errors.NewValidationError("columns", fmt.Sprintf("want %v", want), s.Columns)
	}
	c.setColumns(want)

	scaler, err := preprocessing.NewStandardScalerFromParams(s.Mean, s.Scale)
	if err != nil {
		return nil, err
	}
	if scaler.NFeatures != len(want) {
		return nil, errors.NewDimensionError("codec.FromState", len(want), scaler.NFeatures, 1)
	}
	c.scaler = scaler
	return c, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
