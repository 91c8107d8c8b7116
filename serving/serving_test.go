package serving

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/codec"
	"github.com/YuminosukeSato/scigo-housing/internal/testdata"
	"github.com/YuminosukeSato/scigo-housing/pipeline"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

var (
	artifactsOnce sync.Once
	artifactsDir  string
	artifactsErr  error
)

// trainedDir trains on the 545-row synthetic housing set once and persists the artifacts.
func trainedDir(t *testing.T) string {
	t.Helper()
	artifactsOnce.Do(func() {
		root, err := os.MkdirTemp("", "housing-serving-*")
		if err != nil {
			artifactsErr = err
			return
		}
		res, err := pipeline.Train(context.Background(), testdata.Housing(testdata.HousingRows, 1), pipeline.DefaultOptions())
		if err != nil {
			artifactsErr = err
			return
		}
		artifactsDir = filepath.Join(root, "artifacts")
		artifactsErr = pipeline.Persist(artifactsDir, res)
	})
	require.NoError(t, artifactsErr)
	return artifactsDir
}

func TestMain(m *testing.M) {
	code := m.Run()
	if artifactsDir != "" {
		_ = os.RemoveAll(filepath.Dir(artifactsDir))
	}
	os.Exit(code)
}

func TestState(t *testing.T) {
	assert.Equal(t, Untrained, State(t.TempDir()))
	assert.Equal(t, Trained, State(trainedDir(t)))
	assert.Equal(t, "Trained", Trained.String())
}

func TestLoad_MissingArtifacts(t *testing.T) {
	_, err := Load(t.TempDir())
	var unavailable *errors.ModelUnavailableError
	require.True(t, errors.As(err, &unavailable), "got %v", err)
	assert.ElementsMatch(t, pipeline.RequiredFiles, unavailable.Missing)

	// 成果物が1つだけ欠けている
	dir := t.TempDir()
	src := trainedDir(t)
	for _, f := range pipeline.RequiredFiles[:3] {
		data, err := os.ReadFile(filepath.Join(src, f))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), data, 0o644))
	}
	_, err = Load(dir)
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, pipeline.RequiredFiles[3:], unavailable.Missing)
	assert.Equal(t, Untrained, State(dir))
}

func TestLoad_CorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	src := trainedDir(t)
	for _, f := range pipeline.RequiredFiles {
		data, err := os.ReadFile(filepath.Join(src, f))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), data, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, codec.ScalerFile), []byte("{"), 0o644))

	_, err := Load(dir)
	var unavailable *errors.ModelUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestPredict_SampleRequestWithinTrainingRange(t *testing.T) {
	s, err := Load(trainedDir(t))
	require.NoError(t, err)

	p, err := PredictOne(s, testdata.SampleRequest())
	require.NoError(t, err)

	lo, hi := s.PriceRange()
	assert.GreaterOrEqual(t, p.Point, lo)
	assert.LessOrEqual(t, p.Point, hi)
	assert.True(t, p.InObservedRange)
	assert.InDelta(t, 0.9*p.Point, p.Lower, 1e-6)
	assert.InDelta(t, 1.1*p.Point, p.Upper, 1e-6)

	assert.Greater(t, s.MeanPrice(), lo)
	assert.Less(t, s.MeanPrice(), hi)
	assert.Greater(t, s.TestR2(), pipeline.DefaultMinTestR2)
	assert.Len(t, s.Evaluations(), 3)
	assert.NotEmpty(t, s.RunID())
}

func TestPredict_MatchesTrainingTransform(t *testing.T) {
	dir := trainedDir(t)
	s, err := Load(dir)
	require.NoError(t, err)

	b, err := pipeline.LoadBundle(filepath.Join(dir, pipeline.ModelFile))
	require.NoError(t, err)
	c, err := codec.Load(dir)
	require.NoError(t, err)

	r := testdata.Housing(10, 99)[4]
	x, err := c.Transform(r)
	require.NoError(t, err)
	want, err := b.Model.Predict(mat.NewDense(1, len(x), x))
	require.NoError(t, err)

	p, err := s.Predict(r)
	require.NoError(t, err)
	assert.Equal(t, want.At(0, 0), p.Point)
}

func TestPredict_UnknownCategory(t *testing.T) {
	s, err := Load(trainedDir(t))
	require.NoError(t, err)

	r := testdata.SampleRequest()
	r.FurnishingStatus = "luxury"
	_, err = s.Predict(r)
	var unknown *errors.UnknownCategoryError
	require.True(t, errors.As(err, &unknown), "got %v", err)
	assert.Contains(t, Message(err), "luxury")
}

func TestWithBand(t *testing.T) {
	s, err := Load(trainedDir(t), WithBand(0.25))
	require.NoError(t, err)
	p, err := s.Predict(testdata.SampleRequest())
	require.NoError(t, err)
	assert.InDelta(t, 0.75*p.Point, p.Lower, 1e-6)

	_, err = Load(trainedDir(t), WithBand(1.5))
	assert.Error(t, err)
}

type panicModel struct{}

func (panicModel) Fit(_, _ mat.Matrix) error             { return nil }
func (panicModel) Predict(mat.Matrix) (mat.Matrix, error) { panic("boom") }
func (panicModel) IsFitted() bool                         { return true }

// constModel predicts the same value for every row.
type constModel float64

func (constModel) Fit(_, _ mat.Matrix) error { return nil }
func (m constModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, float64(m))
	}
	return out, nil
}
func (constModel) IsFitted() bool { return true }

func TestPredict_BandOrderedForNegativePoint(t *testing.T) {
	c, err := codec.Fit(testdata.Housing(100, 1))
	require.NoError(t, err)
	s := &Session{
		codec:  c,
		bundle: pipeline.Bundle{Model: constModel(-1000), Columns: c.Columns(), PriceMin: 1, PriceMax: 2},
		band:   DefaultBand,
		logger: log.GetLoggerWithName("serving"),
	}

	p, err := s.Predict(testdata.SampleRequest())
	require.NoError(t, err)
	assert.Equal(t, -1000.0, p.Point)
	assert.InDelta(t, -1100, p.Lower, 1e-9)
	assert.InDelta(t, -900, p.Upper, 1e-9)
	assert.False(t, p.InObservedRange)
}

func TestSafePredict(t *testing.T) {
	_, err := SafePredict(nil, testdata.SampleRequest())
	var unavailable *errors.ModelUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "Model not found. Please run training first.", Message(err))

	c, err := codec.Fit(testdata.Housing(100, 1))
	require.NoError(t, err)
	s := &Session{
		codec:  c,
		bundle: pipeline.Bundle{Model: panicModel{}, Columns: c.Columns()},
		band:   DefaultBand,
		logger: log.GetLoggerWithName("serving"),
	}
	_, err = SafePredict(s, testdata.SampleRequest())
	var panicked *errors.PanicError
	require.True(t, errors.As(err, &panicked))
	assert.Equal(t, "Prediction failed because of an internal error.", Message(err))
}

func TestSession_ConcurrentPredict(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := Load(trainedDir(t))
	require.NoError(t, err)
	want, err := s.Predict(testdata.SampleRequest())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Predict(testdata.SampleRequest())
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
