package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	// X は n_samples × n_features、y は n_samples × 1
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う（n_samples × 1 を返す）
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は候補モデルが実装するインターフェース
// モデル選択のロジックはこのインターフェースにのみ依存し、具象型を見ない
type Regressor interface {
	Fitter
	Predictor
	IsFitted() bool
}
