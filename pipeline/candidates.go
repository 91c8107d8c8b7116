package pipeline

import (
	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/linear"
	"github.com/YuminosukeSato/scigo-housing/sklearn/ensemble"
	"github.com/YuminosukeSato/scigo-housing/sklearn/tree"
)

// 候補モデルの名前（レポートとログに出る）
const (
	LinearRegressionName = "Linear Regression"
	RandomForestName     = "Random Forest Regressor"
	DecisionTreeName     = "Decision Tree Regressor"
)

func init() {
	// バンドル内の model.Regressor をgobで復元できるように具象型を登録する
	model.Register(
		&linear.LinearRegression{},
		&tree.DecisionTreeRegressor{},
		&ensemble.RandomForestRegressor{},
	)
}

// Candidate は候補モデルの名前と生成関数
type Candidate struct {
	Name string
	New  func() model.Regressor
}

// CandidateParams は候補モデルのハイパーパラメータ
type CandidateParams struct {
	Seed        int64
	NEstimators int
	MaxDepth    int
}

// DefaultCandidateParams は既定のハイパーパラメータ（木の深さ10、100本、シード42）
func DefaultCandidateParams() CandidateParams {
	return CandidateParams{Seed: 42, NEstimators: 100, MaxDepth: 10}
}

// DefaultCandidates は固定順の3候補を返す
// 同点の場合は先に並んでいる候補が選ばれる
func DefaultCandidates(p CandidateParams) []Candidate {
	return []Candidate{
		{
			Name: LinearRegressionName,
			New:  func() model.Regressor { return linear.NewLinearRegression() },
		},
		{
			Name: RandomForestName,
			New: func() model.Regressor {
				return ensemble.NewRandomForestRegressor(
					ensemble.WithNEstimators(p.NEstimators),
					ensemble.WithMaxDepth(p.MaxDepth),
					ensemble.WithRandomState(p.Seed),
				)
			},
		},
		{
			Name: DecisionTreeName,
			New: func() model.Regressor {
				return tree.NewDecisionTreeRegressor(
					tree.WithMaxDepth(p.MaxDepth),
					tree.WithRandomState(p.Seed),
				)
			},
		},
	}
}
