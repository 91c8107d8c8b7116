package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// BinaryLabelEncoder は2値カテゴリ列のラベルを0と1に変換する
//
// Classes は辞書順で保持し、Classes[0] が0、Classes[1] が1になる
// （住宅データでは "no" → 0, "yes" → 1）。
// 対応表は閉じており、それ以外のラベルは UnknownCategoryError になる。
type BinaryLabelEncoder struct {
	Column  string
	Classes [2]string
}

// FitBinaryLabelEncoder は列の観測値からエンコーダーを学習する
// 異なるラベルがちょうど2つでなければ InvalidDataError を返す
func FitBinaryLabelEncoder(column string, values []string) (BinaryLabelEncoder, error) {
	distinct := Distinct(values)
	if len(distinct) != 2 {
		return BinaryLabelEncoder{}, errors.NewInvalidDataErrorf("FitBinaryLabelEncoder",
			"binary column %q has %d distinct values %v, want exactly 2", column, len(distinct), distinct)
	}
	return BinaryLabelEncoder{Column: column, Classes: [2]string{distinct[0], distinct[1]}}, nil
}

// NewBinaryLabelEncoder は保存済みのクラスからエンコーダーを復元する
// クラスは辞書順に並んだ異なる2つのラベルでなければならない
func NewBinaryLabelEncoder(column string, classes []string) (BinaryLabelEncoder, error) {
	if len(classes) != 2 {
		return BinaryLabelEncoder{}, errors.NewValidationError(column, "binary encoder needs exactly 2 classes", classes)
	}
	if classes[0] >= classes[1] {
		return BinaryLabelEncoder{}, errors.NewValidationError(column, "classes must be distinct and sorted", classes)
	}
	return BinaryLabelEncoder{Column: column, Classes: [2]string{classes[0], classes[1]}}, nil
}

// Encode はラベルを0または1に変換する
func (e BinaryLabelEncoder) Encode(value string) (float64, error) {
	switch value {
	case e.Classes[0]:
		return 0, nil
	case e.Classes[1]:
		return 1, nil
	default:
		return 0, errors.NewUnknownCategoryError(e.Column, value, e.Classes[:])
	}
}

// Decode はコード（0または1）に対応するラベルを返す
func (e BinaryLabelEncoder) Decode(code int) (string, error) {
	if code != 0 && code != 1 {
		return "", errors.NewValueError("BinaryLabelEncoder.Decode", fmt.Sprintf("code %d out of range [0, 1]", code))
	}
	return e.Classes[code], nil
}

// Distinct は重複を除いてソートした値を返す
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, 4)
	for _, v := range values {
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
