// Package testdata は住宅データと同じ形の決定的な合成データを生成する
package testdata

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/scigo-housing/dataset"
)

// HousingRows は元データセットの件数
const HousingRows = 545

// Housing は n 件の合成住宅データを返す
// 同じ seed なら常に同じデータになる。n >= 3 なら全てのカテゴリ値が含まれる。
// 価格は特徴量の線形結合にノイズを加えたもので、平均はおよそ 4.7M になる
func Housing(n int, seed int64) []dataset.Record {
	rng := rand.New(rand.NewSource(seed))
	yesNo := func(p float64) (string, float64) {
		if rng.Float64() < p {
			return "yes", 1
		}
		return "no", 0
	}
	choice := func(weights []int) int {
		x := rng.Intn(weights[len(weights)-1])
		for i, w := range weights {
			if x < w {
				return i
			}
		}
		return len(weights) - 1
	}

	records := make([]dataset.Record, n)
	for i := range records {
		area := math.Min(16200, math.Round(1650+rng.ExpFloat64()*3500))
		bedrooms := float64(1 + choice([]int{2, 26, 81, 98, 100}))
		bathrooms := float64(1 + choice([]int{74, 98, 100}))
		stories := float64(1 + choice([]int{42, 86, 94, 100}))
		parking := float64(choice([]int{55, 78, 98, 100}))

		mainroad, mr := yesNo(0.86)
		guestroom, gr := yesNo(0.18)
		basement, bs := yesNo(0.35)
		hotwater, hw := yesNo(0.05)
		aircon, ac := yesNo(0.32)
		prefarea, pa := yesNo(0.23)

		furnishingIdx := choice([]int{26, 68, 100})

		// 先頭3件で全カテゴリを必ず1回は出す
		if i < 3 {
			label, code := "no", 0.0
			if i == 0 {
				label, code = "yes", 1
			}
			mainroad, guestroom, basement, hotwater, aircon, prefarea = label, label, label, label, label, label
			mr, gr, bs, hw, ac, pa = code, code, code, code, code, code
			furnishingIdx = i
		}

		var furnishing string
		var fEffect float64
		switch furnishingIdx {
		case 0:
			furnishing = "furnished"
		case 1:
			furnishing, fEffect = "semi-furnished", -200000
		default:
			furnishing, fEffect = "unfurnished", -500000
		}

		price := 600000 + 380*area + 250000*bedrooms + 900000*(bathrooms-1) +
			400000*(stories-1) + 250000*parking + 400000*mr + 300000*gr + 350000*bs +
			800000*hw + 800000*ac + 600000*pa + fEffect + rng.NormFloat64()*700000
		price = math.Round(math.Max(1750000, price))

		records[i] = dataset.Record{
			Area:             area,
			Bedrooms:         bedrooms,
			Bathrooms:        bathrooms,
			Stories:          stories,
			Parking:          parking,
			MainRoad:         mainroad,
			GuestRoom:        guestroom,
			Basement:         basement,
			HotWaterHeating:  hotwater,
			AirConditioning:  aircon,
			PrefArea:         prefarea,
			FurnishingStatus: furnishing,
			Price:            price,
		}
	}
	return records
}

// SampleRequest は推論リクエストの例（Price なし）
func SampleRequest() dataset.Record {
	return dataset.Record{
		Area:             6000,
		Bedrooms:         3,
		Bathrooms:        2,
		Stories:          2,
		Parking:          2,
		MainRoad:         "yes",
		GuestRoom:        "yes",
		Basement:         "yes",
		HotWaterHeating:  "no",
		AirConditioning:  "yes",
		PrefArea:         "yes",
		FurnishingStatus: "furnished",
	}
}
