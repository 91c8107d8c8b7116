package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// LoadCSV はファイルから住宅データを読み込む
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV はCSVを読み込んでレコードに変換する
// 列はヘッダー名で特定するため、列順は問わない
// 必須列の欠落や数値として解釈できない値は InvalidDataError になる
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewInvalidDataError("ReadCSV", "empty input")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range Header {
		if _, ok := index[col]; !ok {
			return nil, errors.NewInvalidDataErrorf("ReadCSV", "missing column %q", col)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read line %d", line)
		}

		rec, err := parseRow(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.NewInvalidDataError("ReadCSV", "no data rows")
	}
	return records, nil
}

func parseRow(row []string, index map[string]int, line int) (Record, error) {
	var parseErr error
	num := func(col string) float64 {
		if parseErr != nil {
			return 0
		}
		raw := strings.TrimSpace(row[index[col]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			parseErr = errors.NewInvalidDataErrorf("ReadCSV", "line %d: column %q: %q is not a number", line, col, raw)
			return 0
		}
		return v
	}
	str := func(col string) string {
		if parseErr != nil {
			return ""
		}
		v := strings.TrimSpace(row[index[col]])
		if v == "" {
			parseErr = errors.NewInvalidDataErrorf("ReadCSV", "line %d: column %q is empty", line, col)
		}
		return v
	}

	rec := Record{
		Area:             num(ColArea),
		Bedrooms:         num(ColBedrooms),
		Bathrooms:        num(ColBathrooms),
		Stories:          num(ColStories),
		Parking:          num(ColParking),
		MainRoad:         str(ColMainRoad),
		GuestRoom:        str(ColGuestRoom),
		Basement:         str(ColBasement),
		HotWaterHeating:  str(ColHotWaterHeating),
		AirConditioning:  str(ColAirConditioning),
		PrefArea:         str(ColPrefArea),
		FurnishingStatus: str(ColFurnishingStatus),
		Price:            num(ColPrice),
	}
	return rec, parseErr
}

// WriteCSV はレコードを Header の列順でCSVに書き出す
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, r := range records {
		row := []string{
			f(r.Area), f(r.Bedrooms), f(r.Bathrooms), f(r.Stories),
			r.MainRoad, r.GuestRoom, r.Basement, r.HotWaterHeating, r.AirConditioning,
			f(r.Parking), r.PrefArea, r.FurnishingStatus, f(r.Price),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}
