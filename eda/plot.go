package eda

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

const (
	histogramBins = 30
	priceBins     = 50
)

// ScatterColumns は価格との散布図を描く列
var ScatterColumns = []string{dataset.ColArea, dataset.ColBedrooms, dataset.ColBathrooms, dataset.ColParking}

var (
	barColor     = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	scatterColor = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	meanColor    = color.RGBA{R: 255, A: 255}
	medianColor  = color.RGBA{G: 160, A: 255}
)

// Plot はレポートのグラフをPNGとして dir に保存し、保存したファイルのパスを返します。
func Plot(records []dataset.Record, rep *Report, dir string) ([]string, error) {
	if len(records) == 0 {
		return nil, errors.NewInvalidDataError("eda.Plot", "no records")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create plot directory %s", dir)
	}
	logger := log.GetLoggerWithName("eda")

	var saved []string
	save := func(p *plot.Plot, name string, w, h vg.Length) error {
		path := filepath.Join(dir, name)
		if err := p.Save(w, h, path); err != nil {
			return errors.Wrapf(err, "save %s", path)
		}
		saved = append(saved, path)
		logger.Debug("Plot saved", log.PathKey, path)
		return nil
	}

	for _, col := range AnalysisColumns {
		values, err := dataset.NumericColumn(records, col)
		if err != nil {
			return nil, err
		}
		if col != dataset.ColPrice {
			p, err := histogram(values, histogramBins, "Distribution of "+col, col)
			if err != nil {
				return nil, err
			}
			if err := save(p, "histogram_"+col+".png", 6*vg.Inch, 4*vg.Inch); err != nil {
				return nil, err
			}
		}
		p, err := boxPlot(values, "Box plot of "+col, col)
		if err != nil {
			return nil, err
		}
		if err := save(p, "boxplot_"+col+".png", 4*vg.Inch, 5*vg.Inch); err != nil {
			return nil, err
		}
	}

	prices := dataset.Prices(records)
	for _, col := range ScatterColumns {
		values, err := dataset.NumericColumn(records, col)
		if err != nil {
			return nil, err
		}
		p, err := scatter(values, prices, "Price vs "+col, col)
		if err != nil {
			return nil, err
		}
		if err := save(p, "scatter_price_"+col+".png", 6*vg.Inch, 5*vg.Inch); err != nil {
			return nil, err
		}
	}

	p, err := priceDistribution(prices, rep)
	if err != nil {
		return nil, err
	}
	if err := save(p, "price_distribution.png", 8*vg.Inch, 5*vg.Inch); err != nil {
		return nil, err
	}

	for _, d := range rep.Distinct {
		if !isCategorical(d.Column) {
			continue
		}
		values, err := dataset.Column(records, d.Column)
		if err != nil {
			return nil, err
		}
		p, err := countBars(d.Column, d.Values, values)
		if err != nil {
			return nil, err
		}
		if err := save(p, "categorical_"+d.Column+".png", 5*vg.Inch, 4*vg.Inch); err != nil {
			return nil, err
		}
	}

	for _, col := range CategoricalColumns {
		gm, err := groupMean(records, col, prices, true)
		if err != nil {
			return nil, err
		}
		p, err := meanBars(gm)
		if err != nil {
			return nil, err
		}
		if err := save(p, "price_by_"+col+".png", 5*vg.Inch, 4*vg.Inch); err != nil {
			return nil, err
		}
	}

	p, err = heatmap(rep.CorrelationColumns, rep.Correlation)
	if err != nil {
		return nil, err
	}
	if err := save(p, "correlation_heatmap.png", 7*vg.Inch, 6*vg.Inch); err != nil {
		return nil, err
	}

	logger.Info("Plots saved", log.PathKey, dir, "count", len(saved))
	return saved, nil
}

func histogram(values []float64, bins int, title, xlabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Frequency"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, errors.Wrapf(err, "histogram of %s", xlabel)
	}
	h.FillColor = barColor
	p.Add(h)
	return p, nil
}

func boxPlot(values []float64, title, label string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = label

	b, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(values))
	if err != nil {
		return nil, errors.Wrapf(err, "box plot of %s", label)
	}
	b.FillColor = barColor
	p.Add(b)
	p.NominalX(label)
	return p, nil
}

func scatter(x, y []float64, title, xlabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "price"

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrapf(err, "scatter of %s", xlabel)
	}
	s.Color = scatterColor
	p.Add(s)
	return p, nil
}

// priceDistribution は価格のヒストグラムに平均と中央値の縦線を重ねる
func priceDistribution(prices []float64, rep *Report) (*plot.Plot, error) {
	p, err := histogram(prices, priceBins, "Distribution of House Prices", "Price")
	if err != nil {
		return nil, err
	}
	s, ok := rep.Stats(dataset.ColPrice)
	if !ok {
		return p, nil
	}

	top := maxBinCount(prices, priceBins)
	for _, ref := range []struct {
		name  string
		value float64
		color color.Color
	}{
		{fmt.Sprintf("Mean: %.0f", s.Mean), s.Mean, meanColor},
		{fmt.Sprintf("Median: %.0f", s.Median), s.Median, medianColor},
	} {
		l, err := plotter.NewLine(plotter.XYs{{X: ref.value, Y: 0}, {X: ref.value, Y: top}})
		if err != nil {
			return nil, errors.Wrap(err, "price reference line")
		}
		l.Color = ref.color
		l.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		l.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(ref.name, l)
	}
	p.Y.Min = 0
	return p, nil
}

func maxBinCount(values []float64, bins int) float64 {
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return float64(len(values))
	}
	m := 0.0
	for _, b := range h.Bins {
		if b.Weight > m {
			m = b.Weight
		}
	}
	return m
}

func countBars(column string, categories, values []string) (*plot.Plot, error) {
	counts := make(map[string]int, len(categories))
	for _, v := range values {
		counts[v]++
	}
	bars := make(plotter.Values, len(categories))
	for i, c := range categories {
		bars[i] = float64(counts[c])
	}
	p := plot.New()
	p.Title.Text = "Distribution of " + column
	p.Y.Label.Text = "Count"

	b, err := plotter.NewBarChart(bars, vg.Points(30))
	if err != nil {
		return nil, errors.Wrapf(err, "bar chart of %s", column)
	}
	b.Color = barColor
	p.Add(b)
	p.NominalX(categories...)
	return p, nil
}

func meanBars(gm GroupMean) (*plot.Plot, error) {
	bars := make(plotter.Values, len(gm.Groups))
	names := make([]string, len(gm.Groups))
	for i, g := range gm.Groups {
		bars[i] = g.MeanPrice
		names[i] = g.Value
	}
	p := plot.New()
	p.Title.Text = "Average Price by " + gm.Column
	p.Y.Label.Text = "Average Price"

	b, err := plotter.NewBarChart(bars, vg.Points(30))
	if err != nil {
		return nil, errors.Wrapf(err, "bar chart of %s", gm.Column)
	}
	b.Color = barColor
	p.Add(b)
	p.NominalX(names...)
	return p, nil
}

// corrGrid は相関行列を plotter.GridXYZ として公開する
type corrGrid struct {
	m mat.Symmetric
}

func (g corrGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

// 行0を上に描くため行を反転する
func (g corrGrid) Z(c, r int) float64 {
	n := g.m.SymmetricDim()
	return g.m.At(n-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func heatmap(columns []string, corr *mat.SymDense) (*plot.Plot, error) {
	if corr == nil {
		return nil, errors.NewValueError("eda.heatmap", "correlation matrix is not computed")
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	p := plot.New()
	p.Title.Text = "Correlation Matrix Heatmap"
	h := plotter.NewHeatMap(corrGrid{m: corr}, cmap.Palette(255))
	h.Min, h.Max = -1, 1
	h.NaN = color.Gray{Y: 200}
	p.Add(h)

	n := len(columns)
	xticks := make([]plot.Tick, n)
	yticks := make([]plot.Tick, n)
	for i, col := range columns {
		xticks[i] = plot.Tick{Value: float64(i), Label: col}
		yticks[i] = plot.Tick{Value: float64(n - 1 - i), Label: col}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = -1

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			l, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    []plotter.XY{{X: float64(j), Y: float64(n - 1 - i)}},
				Labels: []string{fmt.Sprintf("%.2f", corr.At(i, j))},
			})
			if err != nil {
				return nil, errors.Wrap(err, "heatmap labels")
			}
			for k := range l.TextStyle {
				l.TextStyle[k].XAlign = -0.5
				l.TextStyle[k].YAlign = -0.5
			}
			p.Add(l)
		}
	}
	return p, nil
}

func isCategorical(column string) bool {
	for _, c := range CategoricalColumns {
		if c == column {
			return true
		}
	}
	return false
}
