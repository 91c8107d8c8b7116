package eda

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// WriteText はレポートを人が読める形式で書き出します。
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	p := &printer{w: tw}

	p.printf("Shape: %d rows x %d columns\n\n", r.Rows, r.Columns)

	p.printf("Statistical summary\n")
	p.printf("column\tcount\tmean\tstd\tmin\t25%%\t50%%\t75%%\tmax\tmode\tskew\t\n")
	for _, s := range r.Numeric {
		p.printf("%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t\n",
			s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Mode, s.Skew)
	}
	p.flush(tw)

	p.printf("\nMissing values\n")
	total := 0
	for _, col := range sortedKeys(r.Missing) {
		total += r.Missing[col]
	}
	if total == 0 {
		p.printf("No missing values found.\n")
	} else {
		for _, col := range sortedKeys(r.Missing) {
			if n := r.Missing[col]; n > 0 {
				p.printf("%s\t%d\t\n", col, n)
			}
		}
		p.flush(tw)
	}

	p.printf("\nUnique values\n")
	for _, d := range r.Distinct {
		p.printf("%s: %d unique values\n", d.Column, d.Count)
		if d.Values != nil {
			p.printf("  Values: [%s]\n", strings.Join(d.Values, " "))
		}
	}

	p.printf("\nCorrelation matrix\n")
	p.printf("\t%s\t\n", strings.Join(r.CorrelationColumns, "\t"))
	for i, col := range r.CorrelationColumns {
		cells := make([]string, len(r.CorrelationColumns))
		for j := range r.CorrelationColumns {
			cells[j] = fmt.Sprintf("%.3f", r.Correlation.At(i, j))
		}
		p.printf("%s\t%s\t\n", col, strings.Join(cells, "\t"))
	}
	p.flush(tw)

	p.printf("\nOutliers (IQR method)\n")
	for _, o := range r.Outliers {
		p.printf("%s\t%d\t[%.2f, %.2f]\t\n", o.Column, o.Count, o.Lower, o.Upper)
	}
	p.flush(tw)

	for _, gm := range r.GroupMeans {
		p.printf("\nAverage price by %s\n", gm.Column)
		for _, g := range gm.Groups {
			p.printf("%s\t%.2f\t(n=%d)\t\n", g.Value, g.MeanPrice, g.Count)
		}
		p.flush(tw)
	}
	return p.err
}

// printer は最初の書き込みエラーを保持する
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) flush(tw *tabwriter.Writer) {
	if p.err != nil {
		return
	}
	p.err = tw.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
