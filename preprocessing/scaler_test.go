package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	s := NewStandardScaler()
	out, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 25}, s.Mean, 1e-12)
	// 母標準偏差 sqrt(1.25)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)

	r, c := out.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 2, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, out)
		mean, sq := 0.0, 0.0
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))
		for _, v := range col {
			sq += (v - mean) * (v - mean)
		}
		assert.InDelta(t, 0, mean, 1e-12)
		assert.InDelta(t, 1, math.Sqrt(sq/float64(len(col))), 1e-12)
	}
}

func TestStandardScaler_ZeroVarianceColumn(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
	})
	s := NewStandardScaler()
	require.NoError(t, s.Fit(X))
	assert.Equal(t, []int{1}, s.ZeroVariance())

	row, err := s.TransformRow([]float64{2, 9})
	require.NoError(t, err)
	assert.Equal(t, 0.0, row[0])
	assert.Equal(t, 0.0, row[1], "constant column must map to 0 even for unseen values")
	assert.False(t, math.IsNaN(row[1]))
}

func TestStandardScaler_TransformRowDoesNotMutateInput(t *testing.T) {
	s, err := NewStandardScalerFromParams([]float64{1, 2}, []float64{2, 4})
	require.NoError(t, err)

	in := []float64{3, 10}
	out, err := s.TransformRow(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 10}, in)
	assert.Equal(t, []float64{1, 2}, out)
}

func TestStandardScaler_Errors(t *testing.T) {
	s := NewStandardScaler()
	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.TransformRow([]float64{1, 2, 3})
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	_, err = NewStandardScalerFromParams([]float64{1}, []float64{-1})
	assert.Error(t, err)
	_, err = NewStandardScalerFromParams([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestStandardScaler_InverseTransform(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{2, 4, 9})
	s := NewStandardScaler()
	Z, err := s.FitTransform(X)
	require.NoError(t, err)

	back, err := s.InverseTransform(Z)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-9))
}
