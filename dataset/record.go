// Package dataset は住宅価格データの生レコード、CSV読み込み、学習/テスト分割を提供する
package dataset

import "fmt"

// 列名（CSVヘッダーと同じ）
const (
	ColArea             = "area"
	ColBedrooms         = "bedrooms"
	ColBathrooms        = "bathrooms"
	ColStories          = "stories"
	ColParking          = "parking"
	ColMainRoad         = "mainroad"
	ColGuestRoom        = "guestroom"
	ColBasement         = "basement"
	ColHotWaterHeating  = "hotwaterheating"
	ColAirConditioning  = "airconditioning"
	ColPrefArea         = "prefarea"
	ColFurnishingStatus = "furnishingstatus"
	ColPrice            = "price"
)

// NumericColumns は数値特徴量の列名（正準順）
var NumericColumns = []string{ColArea, ColBedrooms, ColBathrooms, ColStories, ColParking}

// BinaryColumns は yes/no の2値カテゴリ列名（正準順）
var BinaryColumns = []string{ColMainRoad, ColGuestRoom, ColBasement, ColHotWaterHeating, ColAirConditioning, ColPrefArea}

// Header はCSVの列順
var Header = []string{
	ColArea, ColBedrooms, ColBathrooms, ColStories, ColMainRoad, ColGuestRoom, ColBasement,
	ColHotWaterHeating, ColAirConditioning, ColParking, ColPrefArea, ColFurnishingStatus, ColPrice,
}

// Record は住宅1件分の生データ
// 推論時は Price をゼロのままにする
type Record struct {
	Area      float64
	Bedrooms  float64
	Bathrooms float64
	Stories   float64
	Parking   float64

	MainRoad        string
	GuestRoom       string
	Basement        string
	HotWaterHeating string
	AirConditioning string
	PrefArea        string

	FurnishingStatus string

	Price float64
}

// Numeric は数値列の値を列名で返す
func (r Record) Numeric(name string) (float64, error) {
	switch name {
	case ColArea:
		return r.Area, nil
	case ColBedrooms:
		return r.Bedrooms, nil
	case ColBathrooms:
		return r.Bathrooms, nil
	case ColStories:
		return r.Stories, nil
	case ColParking:
		return r.Parking, nil
	case ColPrice:
		return r.Price, nil
	}
	return 0, fmt.Errorf("dataset: %q is not a numeric column", name)
}

// Categorical はカテゴリ列の値を列名で返す
func (r Record) Categorical(name string) (string, error) {
	switch name {
	case ColMainRoad:
		return r.MainRoad, nil
	case ColGuestRoom:
		return r.GuestRoom, nil
	case ColBasement:
		return r.Basement, nil
	case ColHotWaterHeating:
		return r.HotWaterHeating, nil
	case ColAirConditioning:
		return r.AirConditioning, nil
	case ColPrefArea:
		return r.PrefArea, nil
	case ColFurnishingStatus:
		return r.FurnishingStatus, nil
	}
	return "", fmt.Errorf("dataset: %q is not a categorical column", name)
}

// Column はカテゴリ列の値をすべてのレコードから集める
func Column(records []Record, name string) ([]string, error) {
	out := make([]string, len(records))
	for i, r := range records {
		v, err := r.Categorical(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// NumericColumn は数値列の値をすべてのレコードから集める
func NumericColumn(records []Record, name string) ([]float64, error) {
	out := make([]float64, len(records))
	for i, r := range records {
		v, err := r.Numeric(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Prices は目的変数の列を返す
func Prices(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Price
	}
	return out
}
