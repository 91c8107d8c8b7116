// Package pipeline は学習パイプライン（分割・特徴量エンコード・候補モデルの学習・評価・選択・保存）を提供する
package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scigo-housing/codec"
	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/metrics"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

// FitScope はCodecを学習するデータ範囲
type FitScope string

const (
	// FitScopeTrain は学習分割のみでCodecを学習する（既定）
	FitScopeTrain FitScope = "train"
	// FitScopeFull は分割前の全データでCodecを学習する
	// テスト分割の統計量が標準化に混ざるため、既存成果物との互換が必要な場合のみ使う
	FitScopeFull FitScope = "full"
)

// DefaultMinTestR2 は選択されたモデルに期待するテストR²の下限
const DefaultMinTestR2 = 0.60

// Options は学習の設定
type Options struct {
	TestSize   float64
	Seed       int64
	FitScope   FitScope
	MinTestR2  float64
	Candidates []Candidate
}

// DefaultOptions は既定の設定を返す
func DefaultOptions() Options {
	return Options{
		TestSize:   dataset.DefaultTestSize,
		Seed:       dataset.DefaultSeed,
		FitScope:   FitScopeTrain,
		MinTestR2:  DefaultMinTestR2,
		Candidates: DefaultCandidates(DefaultCandidateParams()),
	}
}

// Evaluation は1候補モデルの評価結果
type Evaluation struct {
	Name      string
	TrainRMSE float64
	TestRMSE  float64
	TrainR2   float64
	TestR2    float64
	TrainMAE  float64
	TestMAE   float64
}

// Result は学習結果
type Result struct {
	RunID     string
	TrainedAt time.Time

	Codec       *codec.Codec
	Model       model.Regressor
	ModelName   string
	Evaluations []Evaluation
	Best        int

	// BelowFloor は選択されたモデルのテストR²が MinTestR2 を下回ったことを示す
	BelowFloor bool

	NTrain   int
	NTest    int
	// 学習分割の価格の最小・最大・平均
	PriceMin  float64
	PriceMax  float64
	MeanPrice float64
}

// BestEvaluation は選択されたモデルの評価結果を返す
func (r *Result) BestEvaluation() Evaluation {
	return r.Evaluations[r.Best]
}

// Train はデータを分割し、Codecを学習し、全候補を学習・評価してテストR²が最大のモデルを選ぶ
//
// 選ばれたモデルのテストR²が MinTestR2 未満なら LowScoreWarning を出し、
// Result.BelowFloor を立てる（エラーにはしない）。
// ctx は候補モデルの間でキャンセルを確認する。
func Train(ctx context.Context, records []dataset.Record, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "training cancelled")
	}
	if len(opts.Candidates) == 0 {
		return nil, errors.NewValidationError("candidates", "at least one candidate is required", 0)
	}
	if opts.FitScope != FitScopeTrain && opts.FitScope != FitScopeFull {
		return nil, errors.NewValidationError("codec_fit_scope", "must be \"train\" or \"full\"", opts.FitScope)
	}

	res := &Result{RunID: uuid.NewString(), TrainedAt: time.Now().UTC()}
	logger := log.GetLoggerWithName("pipeline").With(log.RunIDKey, res.RunID)
	start := time.Now()

	split, err := dataset.TrainTestSplit(records, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}
	res.NTrain, res.NTest = len(split.Train), len(split.Test)
	res.PriceMin, res.PriceMax = priceRange(split.Train)
	res.MeanPrice = stat.Mean(dataset.Prices(split.Train), nil)

	logger.Info("Dataset split",
		log.SamplesKey, len(records),
		"train.samples", res.NTrain,
		"test.samples", res.NTest,
		log.RandomSeedKey, opts.Seed,
		log.FitScopeKey, string(opts.FitScope),
	)

	fitOn := split.Train
	if opts.FitScope == FitScopeFull {
		fitOn = records
	}
	res.Codec, err = codec.Fit(fitOn)
	if err != nil {
		return nil, err
	}

	XTrain, err := res.Codec.TransformBatch(split.Train)
	if err != nil {
		return nil, err
	}
	XTest, err := res.Codec.TransformBatch(split.Test)
	if err != nil {
		var unknown *errors.UnknownCategoryError
		if errors.As(err, &unknown) {
			return nil, errors.NewInvalidDataErrorf("pipeline.Train",
				"test partition has %s=%q, which does not occur in the training partition",
				unknown.Column, unknown.Value)
		}
		return nil, err
	}
	yTrain := mat.NewVecDense(len(split.Train), dataset.Prices(split.Train))
	yTest := mat.NewVecDense(len(split.Test), dataset.Prices(split.Test))

	models := make([]model.Regressor, 0, len(opts.Candidates))
	for _, c := range opts.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "training cancelled")
		}

		m, ev, err := fitCandidate(c, XTrain, yTrain, XTest, yTest)
		if err != nil {
			return nil, errors.Wrapf(err, "candidate %q", c.Name)
		}
		models = append(models, m)
		res.Evaluations = append(res.Evaluations, ev)

		fields := []any{
			log.ModelNameKey, ev.Name,
			log.OperationKey, log.OperationFit,
			log.R2ScoreKey, ev.TestR2,
			log.RMSEKey, ev.TestRMSE,
			log.MAEKey, ev.TestMAE,
		}
		if pg, ok := m.(model.ParameterGetter); ok {
			fields = append(fields, "model.params", pg.GetParams())
		}
		logger.Info("Candidate evaluated", fields...)
	}

	res.Best = SelectBest(res.Evaluations)
	res.Model = models[res.Best]
	res.ModelName = res.Evaluations[res.Best].Name

	best := res.BestEvaluation()
	if !(best.TestR2 >= opts.MinTestR2) {
		res.BelowFloor = true
		errors.Warn(errors.NewLowScoreWarning(best.Name, "test_r2", best.TestR2, opts.MinTestR2))
	}

	logger.Info("Model selected",
		log.ModelNameKey, res.ModelName,
		log.R2ScoreKey, best.TestR2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// SelectBest はテストR²が最大の候補のインデックスを返す
// 同点（またはNaN）の場合は先の候補を優先する
func SelectBest(evals []Evaluation) int {
	best := 0
	for i := 1; i < len(evals); i++ {
		if evals[i].TestR2 > evals[best].TestR2 || (math.IsNaN(evals[best].TestR2) && !math.IsNaN(evals[i].TestR2)) {
			best = i
		}
	}
	return best
}

func fitCandidate(c Candidate, XTrain mat.Matrix, yTrain *mat.VecDense, XTest mat.Matrix, yTest *mat.VecDense) (model.Regressor, Evaluation, error) {
	m := c.New()
	if err := m.Fit(XTrain, yTrain); err != nil {
		return nil, Evaluation{}, err
	}

	predTrain, err := m.Predict(XTrain)
	if err != nil {
		return nil, Evaluation{}, err
	}
	predTest, err := m.Predict(XTest)
	if err != nil {
		return nil, Evaluation{}, err
	}

	train, err := metrics.Evaluate(yTrain, predTrain)
	if err != nil {
		return nil, Evaluation{}, errors.Wrap(err, "train metrics")
	}
	test, err := metrics.Evaluate(yTest, predTest)
	if err != nil {
		return nil, Evaluation{}, errors.Wrap(err, "test metrics")
	}

	return m, Evaluation{
		Name:      c.Name,
		TrainRMSE: train.RMSE,
		TestRMSE:  test.RMSE,
		TrainR2:   train.R2,
		TestR2:    test.R2,
		TrainMAE:  train.MAE,
		TestMAE:   test.MAE,
	}, nil
}

func priceRange(records []dataset.Record) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range records {
		lo = math.Min(lo, r.Price)
		hi = math.Max(hi, r.Price)
	}
	return lo, hi
}
