package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "housing: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "housing: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 13, 12, 1)

	want := "housing: Predict: dimension mismatch on axis 1 (features). Expected 13, got 12"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearRegression", "Predict")

	want := "housing: LinearRegression: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestPipelineErrors(t *testing.T) {
	t.Run("invalid data", func(t *testing.T) {
		err := NewInvalidDataErrorf("codec.Fit", "column %q has %d distinct values, want 2", "mainroad", 1)
		assert.Equal(t, `housing: codec.Fit: invalid data: column "mainroad" has 1 distinct values, want 2`, err.Error())

		var target *InvalidDataError
		require.True(t, As(err, &target))
		assert.Equal(t, "codec.Fit", target.Op)
	})

	t.Run("unknown category", func(t *testing.T) {
		known := []string{"furnished", "semi-furnished"}
		err := NewUnknownCategoryError("furnishingstatus", "luxury", known)
		known[0] = "mutated"

		var target *UnknownCategoryError
		require.True(t, As(err, &target))
		assert.Equal(t, "luxury", target.Value)
		assert.Equal(t, []string{"furnished", "semi-furnished"}, target.Known, "known labels must be copied")
		assert.Contains(t, err.Error(), `"luxury"`)
	})

	t.Run("model unavailable wraps cause", func(t *testing.T) {
		cause := New("open model.gob: no such file or directory")
		err := NewModelUnavailableError("artifacts", []string{"model.gob"}, cause)

		var target *ModelUnavailableError
		require.True(t, As(err, &target))
		assert.Equal(t, []string{"model.gob"}, target.Missing)
		assert.True(t, Is(err, cause))
		assert.Contains(t, err.Error(), "missing: model.gob")
	})
}

func TestWarnRouting(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewLowScoreWarning("Linear Regression", "test_r2", 0.42, 0.6))

	require.Len(t, got, 1)
	var lsw *LowScoreWarning
	require.True(t, As(got[0], &lsw))
	assert.InDelta(t, 0.42, lsw.Score, 1e-12)
	assert.Contains(t, lsw.Error(), "below the sanity floor")
}

func TestWarnFallsBackToHandler(t *testing.T) {
	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(func(w error) {})

	w := NewLowScoreWarning("Decision Tree Regressor", "test_r2", 0.1, 0.6)
	Warn(w)
	assert.Equal(t, w, got)
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrSingularMatrix, "in LinearRegression.Fit")

	if !Is(wrapped, ErrSingularMatrix) {
		t.Error("Expected Is(wrapped, ErrSingularMatrix) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in LinearRegression.Fit") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	expectedMsg := "in Predict: expected 10, got 5"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("transform", []float64{0, 1.5, -2}))

	err := CheckNumericalStability("transform", []float64{0, math.NaN(), 1})
	var target *NumericalInstabilityError
	require.True(t, As(err, &target))
	assert.Equal(t, 1, target.Iteration)

	assert.Equal(t, 0.0, SafeDivide(3, 0))
	assert.Equal(t, 1.5, SafeDivide(3, 2))
}
