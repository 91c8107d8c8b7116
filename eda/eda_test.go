package eda

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/internal/testdata"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

func record(area, bedrooms, price float64, furnishing, prefarea string) dataset.Record {
	return dataset.Record{
		Area: area, Bedrooms: bedrooms, Bathrooms: 1, Stories: 1, Parking: 0,
		MainRoad: "yes", GuestRoom: "no", Basement: "no", HotWaterHeating: "no",
		AirConditioning: "no", PrefArea: prefarea, FurnishingStatus: furnishing,
		Price: price,
	}
}

func smallRecords() []dataset.Record {
	return []dataset.Record{
		record(1000, 2, 100, "furnished", "yes"),
		record(2000, 2, 200, "furnished", "no"),
		record(3000, 3, 300, "semi-furnished", "no"),
		record(4000, 3, 400, "unfurnished", "no"),
		record(100000, 4, 500, "unfurnished", "yes"),
	}
}

func TestAnalyze_Statistics(t *testing.T) {
	rep, err := Analyze(smallRecords())
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Rows)
	assert.Equal(t, len(dataset.Header), rep.Columns)

	price, ok := rep.Stats(dataset.ColPrice)
	require.True(t, ok)
	assert.InDelta(t, 300, price.Mean, 1e-9)
	assert.InDelta(t, 300, price.Median, 1e-9)
	assert.InDelta(t, 200, price.Q1, 1e-9)
	assert.InDelta(t, 400, price.Q3, 1e-9)
	assert.InDelta(t, math.Sqrt(25000), price.Std, 1e-9)
	assert.Equal(t, 100.0, price.Min)
	assert.Equal(t, 500.0, price.Max)
	assert.InDelta(t, 0, price.Skew, 1e-9)

	bedrooms, ok := rep.Stats(dataset.ColBedrooms)
	require.True(t, ok)
	// 2と3が同数の場合は小さい値
	assert.Equal(t, 2.0, bedrooms.Mode)

	for _, n := range rep.Missing {
		assert.Zero(t, n)
	}
}

func TestAnalyze_Outliers(t *testing.T) {
	rep, err := Analyze(smallRecords())
	require.NoError(t, err)

	for _, o := range rep.Outliers {
		switch o.Column {
		case dataset.ColArea:
			// Q1=2000, Q3=4000 → 上限7000
			assert.InDelta(t, 7000, o.Upper, 1e-9)
			assert.Equal(t, 1, o.Count)
		case dataset.ColPrice:
			assert.Zero(t, o.Count)
		}
	}
}

func TestAnalyze_DistinctAndGroups(t *testing.T) {
	rep, err := Analyze(smallRecords())
	require.NoError(t, err)

	byColumn := make(map[string]Distinct)
	for _, d := range rep.Distinct {
		byColumn[d.Column] = d
	}
	assert.Equal(t, 3, byColumn[dataset.ColFurnishingStatus].Count)
	assert.Equal(t, []string{"furnished", "semi-furnished", "unfurnished"}, byColumn[dataset.ColFurnishingStatus].Values)
	assert.Equal(t, 1, byColumn[dataset.ColMainRoad].Count)

	require.Len(t, rep.GroupMeans, len(GroupColumns))
	furnishing := rep.GroupMeans[0]
	assert.Equal(t, dataset.ColFurnishingStatus, furnishing.Column)
	assert.Equal(t, []Group{
		{Value: "unfurnished", Count: 2, MeanPrice: 450},
		{Value: "semi-furnished", Count: 1, MeanPrice: 300},
		{Value: "furnished", Count: 2, MeanPrice: 150},
	}, furnishing.Groups)

	bedrooms := rep.GroupMeans[1]
	assert.Equal(t, "4", bedrooms.Groups[0].Value)

	prefarea := rep.GroupMeans[3]
	assert.Equal(t, "no", prefarea.Groups[0].Value)
	assert.InDelta(t, 300, prefarea.Groups[1].MeanPrice, 1e-9)
}

func TestAnalyze_Correlation(t *testing.T) {
	rep, err := Analyze(smallRecords())
	require.NoError(t, err)

	n := len(rep.CorrelationColumns)
	for i := 0; i < n; i++ {
		c := rep.Correlation.At(i, i)
		if !math.IsNaN(c) {
			assert.InDelta(t, 1, c, 1e-9)
		}
	}
	corr := rep.CorrelationWithPrice()
	assert.Greater(t, corr[dataset.ColBedrooms], 0.8)
	// 分散ゼロの列はNaN
	assert.True(t, math.IsNaN(corr[dataset.ColBathrooms]))
}

func TestAnalyze_TooFewRecords(t *testing.T) {
	_, err := Analyze(smallRecords()[:1])
	var invalid *errors.InvalidDataError
	assert.True(t, errors.As(err, &invalid))
}

func TestWriteText(t *testing.T) {
	rep, err := Analyze(smallRecords())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "Shape: 5 rows x 13 columns")
	assert.Contains(t, out, "No missing values found.")
	assert.Contains(t, out, "Average price by furnishingstatus")
	assert.Contains(t, out, "Values: [furnished semi-furnished unfurnished]")
}

func TestPlot(t *testing.T) {
	records := testdata.Housing(120, 3)
	rep, err := Analyze(records)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "plots")
	saved, err := Plot(records, rep, dir)
	require.NoError(t, err)

	want := []string{
		"histogram_area.png",
		"boxplot_price.png",
		"scatter_price_parking.png",
		"price_distribution.png",
		"categorical_furnishingstatus.png",
		"price_by_prefarea.png",
		"correlation_heatmap.png",
	}
	for _, name := range want {
		path := filepath.Join(dir, name)
		assert.Contains(t, saved, path)
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.NotContains(t, saved, filepath.Join(dir, "histogram_price.png"))
}

func TestPlot_NoRecords(t *testing.T) {
	_, err := Plot(nil, &Report{}, t.TempDir())
	assert.Error(t, err)
}
