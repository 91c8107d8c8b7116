package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/internal/testdata"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

var wantColumns = []string{
	"area", "bedrooms", "bathrooms", "stories", "parking",
	"mainroad", "guestroom", "basement", "hotwaterheating", "airconditioning", "prefarea",
	"furnishing_semi-furnished", "furnishing_unfurnished",
}

func fitHousing(t *testing.T) (*Codec, []dataset.Record) {
	t.Helper()
	records := testdata.Housing(testdata.HousingRows, 1)
	c, err := Fit(records)
	require.NoError(t, err)
	return c, records
}

func TestFit_Columns(t *testing.T) {
	c, _ := fitHousing(t)
	assert.Equal(t, wantColumns, c.Columns())
	assert.Equal(t, len(wantColumns), c.NumFeatures())
	assert.Equal(t, []string{"furnished", "semi-furnished", "unfurnished"}, c.Categories())
	assert.NotContains(t, c.Columns(), dataset.ColPrice)
}

func TestFit_Idempotent(t *testing.T) {
	records := testdata.Housing(200, 3)
	a, err := Fit(records)
	require.NoError(t, err)
	b, err := Fit(records)
	require.NoError(t, err)
	assert.Equal(t, a.State(), b.State())
}

func TestTransform_LengthAndNoNaN(t *testing.T) {
	c, records := fitHousing(t)
	for i, r := range records {
		v, err := c.Transform(r)
		require.NoError(t, err, "record %d", i)
		require.Len(t, v, len(wantColumns))
		for j, x := range v {
			require.False(t, math.IsNaN(x) || math.IsInf(x, 0), "record %d column %s", i, wantColumns[j])
		}
	}
}

func TestEncode_BaselineIsAllZeroIndicators(t *testing.T) {
	c, _ := fitHousing(t)

	r := testdata.SampleRequest()
	v, err := c.Encode(r)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, v[len(v)-2:])

	r.FurnishingStatus = "unfurnished"
	v, err = c.Encode(r)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, v[len(v)-2:])

	// mainroad..prefarea: yes yes yes no yes yes
	assert.Equal(t, []float64{1, 1, 1, 0, 1, 1}, v[5:11])
	assert.Equal(t, []float64{6000, 3, 2, 2, 2}, v[:5])
}

func TestTransform_BaselineIndicatorsStandardizeFromZero(t *testing.T) {
	c, _ := fitHousing(t)
	s := c.State()

	v, err := c.Transform(testdata.SampleRequest())
	require.NoError(t, err)
	for j := len(v) - 2; j < len(v); j++ {
		assert.InDelta(t, (0-s.Mean[j])/s.Scale[j], v[j], 1e-12)
	}
}

func TestTransform_UnknownCategory(t *testing.T) {
	c, _ := fitHousing(t)

	r := testdata.SampleRequest()
	r.FurnishingStatus = "luxury"
	_, err := c.Transform(r)
	var unknown *errors.UnknownCategoryError
	require.True(t, errors.As(err, &unknown), "got %v", err)
	assert.Equal(t, "furnishingstatus", unknown.Column)

	r = testdata.SampleRequest()
	r.AirConditioning = "maybe"
	_, err = c.Transform(r)
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "airconditioning", unknown.Column)
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(nil)
	var invalid *errors.InvalidDataError
	assert.True(t, errors.As(err, &invalid))

	records := testdata.Housing(200, 2)
	for i := range records {
		records[i].HotWaterHeating = "no"
	}
	_, err = Fit(records)
	assert.True(t, errors.As(err, &invalid), "single-valued binary column must fail")

	records = testdata.Housing(200, 2)
	for i := range records {
		records[i].FurnishingStatus = "furnished"
	}
	_, err = Fit(records)
	assert.True(t, errors.As(err, &invalid), "single furnishing category must fail")
}

func TestFit_SubsetMissingValueStillFitsOnFullSet(t *testing.T) {
	records := testdata.Housing(100, 4)
	for i := range records {
		records[i].GuestRoom = "no"
	}
	records[99].GuestRoom = "yes"

	c, err := Fit(records)
	require.NoError(t, err)
	for _, r := range records[:99] {
		_, err := c.Transform(r)
		require.NoError(t, err)
	}
}

func TestZeroVarianceColumnTransformsToZero(t *testing.T) {
	records := testdata.Housing(60, 5)
	for i := range records {
		records[i].Stories = 2
	}
	c, err := Fit(records)
	require.NoError(t, err)

	r := records[0]
	r.Stories = 4
	v, err := c.Transform(r)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v[3])
}

func TestTransformBatch(t *testing.T) {
	c, records := fitHousing(t)
	X, err := c.TransformBatch(records[:10])
	require.NoError(t, err)

	r, cols := X.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, len(wantColumns), cols)

	row, err := c.Transform(records[7])
	require.NoError(t, err)
	for j := range row {
		assert.Equal(t, row[j], X.At(7, j))
	}

	_, err = c.TransformBatch(nil)
	assert.Error(t, err)
}

func TestKnown(t *testing.T) {
	c, _ := fitHousing(t)
	assert.True(t, c.Known("furnishingstatus", "semi-furnished"))
	assert.False(t, c.Known("furnishingstatus", "luxury"))
	assert.True(t, c.Known("mainroad", "yes"))
	assert.False(t, c.Known("area", "1"))
}
