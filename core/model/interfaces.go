package model

import "gonum.org/v1/gonum/mat"

// ParameterGetter is the interface for models that expose their hyperparameters.
// The training orchestrator logs these next to each candidate's scores.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)
}
