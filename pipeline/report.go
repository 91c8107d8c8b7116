package pipeline

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// ReportHeader は評価レポートCSVの列
var ReportHeader = []string{"Model", "Train_RMSE", "Test_RMSE", "Train_R2", "Test_R2", "Train_MAE", "Test_MAE"}

// WriteReport は候補ごとに1行の評価レポートをCSVで書き出す
func WriteReport(w io.Writer, evals []Evaluation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return errors.Wrap(err, "failed to write report header")
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, e := range evals {
		row := []string{e.Name, f(e.TrainRMSE), f(e.TestRMSE), f(e.TrainR2), f(e.TestR2), f(e.TrainMAE), f(e.TestMAE)}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write report row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush report")
}

// ReadReport は WriteReport が書いたレポートを読み込む
func ReadReport(r io.Reader) ([]Evaluation, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report")
	}
	if len(rows) == 0 || len(rows[0]) != len(ReportHeader) {
		return nil, errors.NewInvalidDataError("ReadReport", "unexpected report header")
	}
	for i, h := range ReportHeader {
		if rows[0][i] != h {
			return nil, errors.NewInvalidDataErrorf("ReadReport", "column %d is %q, want %q", i, rows[0][i], h)
		}
	}

	evals := make([]Evaluation, 0, len(rows)-1)
	for line, row := range rows[1:] {
		var vals [6]float64
		for j := range vals {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, errors.NewInvalidDataErrorf("ReadReport", "line %d column %s: %v", line+2, ReportHeader[j+1], err)
			}
			vals[j] = v
		}
		evals = append(evals, Evaluation{
			Name:      row[0],
			TrainRMSE: vals[0],
			TestRMSE:  vals[1],
			TrainR2:   vals[2],
			TestR2:    vals[3],
			TrainMAE:  vals[4],
			TestMAE:   vals[5],
		})
	}
	return evals, nil
}
