// Package eda は住宅データの探索的データ分析 (記述統計、相関、外れ値、グラフ) を提供します。
package eda

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

// maxListedValues 以下のユニーク数の列はユニーク値を列挙する
const maxListedValues = 10

// outlierFactor はIQR外れ値判定の係数
const outlierFactor = 1.5

// AnalysisColumns は数値統計と相関を計算する列 (目的変数を含む)
var AnalysisColumns = append(append([]string{}, dataset.NumericColumns...), dataset.ColPrice)

// CategoricalColumns はカテゴリ列 (二値列と家具状態)
var CategoricalColumns = append(append([]string{}, dataset.BinaryColumns...), dataset.ColFurnishingStatus)

// GroupColumns は価格の平均を集計する列。Descending が真の場合は平均価格の降順で並べる
var GroupColumns = []struct {
	Column     string
	Descending bool
}{
	{dataset.ColFurnishingStatus, true},
	{dataset.ColBedrooms, true},
	{dataset.ColMainRoad, false},
	{dataset.ColPrefArea, false},
}

// ColumnStats は数値列の記述統計
type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	Median float64
	Mode   float64
	Std    float64
	Min    float64
	Q1     float64
	Q3     float64
	Max    float64
	Skew   float64
}

// Distinct は列のユニーク数と、少数の場合はその値
type Distinct struct {
	Column string
	Count  int
	Values []string
}

// Outliers はIQR法で検出した外れ値の件数
type Outliers struct {
	Column string
	Lower  float64
	Upper  float64
	Count  int
}

// Group はカテゴリ値ごとの件数と平均価格
type Group struct {
	Value     string
	Count     int
	MeanPrice float64
}

// GroupMean は列ごとの平均価格の集計
type GroupMean struct {
	Column string
	Groups []Group
}

// Report は探索的データ分析の結果
type Report struct {
	Rows    int
	Columns int

	Numeric  []ColumnStats
	Distinct []Distinct
	// Missing は型付きの読み込み後は常に0だが列ごとに報告する
	Missing map[string]int

	CorrelationColumns []string
	Correlation        *mat.SymDense

	Outliers   []Outliers
	GroupMeans []GroupMean
}

// Analyze はレコード全体の記述統計を計算します。
func Analyze(records []dataset.Record) (*Report, error) {
	if len(records) < 2 {
		return nil, errors.NewInvalidDataErrorf("eda.Analyze", "need at least 2 records, got %d", len(records))
	}
	logger := log.GetLoggerWithName("eda")

	rep := &Report{
		Rows:               len(records),
		Columns:            len(dataset.Header),
		Missing:            make(map[string]int, len(dataset.Header)),
		CorrelationColumns: AnalysisColumns,
	}
	for _, col := range dataset.Header {
		rep.Missing[col] = 0
	}

	data := mat.NewDense(len(records), len(AnalysisColumns), nil)
	for j, col := range AnalysisColumns {
		values, err := dataset.NumericColumn(records, col)
		if err != nil {
			return nil, err
		}
		data.SetCol(j, values)
		rep.Numeric = append(rep.Numeric, describe(col, values))
		rep.Distinct = append(rep.Distinct, distinct(col, formatValues(values)))
		rep.Outliers = append(rep.Outliers, iqrOutliers(col, values))
	}
	for _, col := range CategoricalColumns {
		values, err := dataset.Column(records, col)
		if err != nil {
			return nil, err
		}
		rep.Distinct = append(rep.Distinct, distinct(col, values))
	}

	rep.Correlation = mat.NewSymDense(len(AnalysisColumns), nil)
	stat.CorrelationMatrix(rep.Correlation, data, nil)

	prices := dataset.Prices(records)
	for _, g := range GroupColumns {
		gm, err := groupMean(records, g.Column, prices, g.Descending)
		if err != nil {
			return nil, err
		}
		rep.GroupMeans = append(rep.GroupMeans, gm)
	}

	logger.Info("Exploratory analysis completed",
		log.OperationKey, "analyze",
		log.PhaseKey, log.PhaseAnalysis,
		log.SamplesKey, rep.Rows,
		log.FeaturesKey, rep.Columns,
	)
	return rep, nil
}

// Stats は列名で数値統計を返す
func (r *Report) Stats(column string) (ColumnStats, bool) {
	for _, s := range r.Numeric {
		if s.Column == column {
			return s, true
		}
	}
	return ColumnStats{}, false
}

// CorrelationWithPrice は各列と価格の相関係数を返す
func (r *Report) CorrelationWithPrice() map[string]float64 {
	p := len(r.CorrelationColumns) - 1
	out := make(map[string]float64, p)
	for i, col := range r.CorrelationColumns[:p] {
		out[col] = r.Correlation.At(i, p)
	}
	return out
}

func describe(column string, values []float64) ColumnStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(values, nil)
	return ColumnStats{
		Column: column,
		Count:  len(values),
		Mean:   mean,
		Median: quantile(sorted, 0.5),
		Mode:   mode(sorted),
		Std:    std,
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		Skew:   stat.Skew(values, nil),
	}
}

// quantile はソート済みの値の p 分位点を位置 p*(n-1) の線形補間で求める
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// mode は最頻値を返す。同数の場合は小さい値を優先する
func mode(sorted []float64) float64 {
	best, bestN := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestN {
			best, bestN = sorted[i], j-i
		}
		i = j
	}
	return best
}

func iqrOutliers(column string, values []float64) Outliers {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := q3 - q1
	o := Outliers{Column: column, Lower: q1 - outlierFactor*iqr, Upper: q3 + outlierFactor*iqr}
	for _, v := range values {
		if v < o.Lower || v > o.Upper {
			o.Count++
		}
	}
	return o
}

func distinct(column string, values []string) Distinct {
	seen := make(map[string]struct{})
	var order []string
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			order = append(order, v)
		}
	}
	d := Distinct{Column: column, Count: len(order)}
	if d.Count <= maxListedValues {
		d.Values = order
	}
	return d
}

func groupMean(records []dataset.Record, column string, prices []float64, descending bool) (GroupMean, error) {
	keys := make([]string, len(records))
	for i, r := range records {
		if v, err := r.Categorical(column); err == nil {
			keys[i] = v
			continue
		}
		v, err := r.Numeric(column)
		if err != nil {
			return GroupMean{}, err
		}
		keys[i] = formatValue(v)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, k := range keys {
		sums[k] += prices[i]
		counts[k]++
	}
	gm := GroupMean{Column: column}
	for k, n := range counts {
		gm.Groups = append(gm.Groups, Group{Value: k, Count: n, MeanPrice: sums[k] / float64(n)})
	}
	sort.Slice(gm.Groups, func(i, j int) bool {
		a, b := gm.Groups[i], gm.Groups[j]
		if descending && a.MeanPrice != b.MeanPrice {
			return a.MeanPrice > b.MeanPrice
		}
		return a.Value < b.Value
	})
	return gm, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatValues(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = formatValue(v)
	}
	return out
}
