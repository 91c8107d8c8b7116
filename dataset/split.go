package dataset

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// DefaultTestSize と DefaultSeed は学習/テスト分割の既定値
const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// Split は分割結果
type Split struct {
	Train []Record
	Test  []Record
}

// TrainTestSplit はシード付きでレコードをシャッフルし、学習用とテスト用に分割する
// テスト件数は ceil(testSize * n)。同じシードなら常に同じ分割になる
func TrainTestSplit(records []Record, testSize float64, seed int64) (Split, error) {
	n := len(records)
	if n == 0 {
		return Split{}, errors.NewInvalidDataError("TrainTestSplit", "empty dataset")
	}
	if testSize <= 0 || testSize >= 1 {
		return Split{}, errors.NewValidationError("testSize", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return Split{}, errors.NewInvalidDataErrorf("TrainTestSplit",
			"%d records leave no training rows with test size %.2f", n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	s := Split{
		Test:  make([]Record, 0, nTest),
		Train: make([]Record, 0, n-nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			s.Test = append(s.Test, records[idx])
		} else {
			s.Train = append(s.Train, records[idx])
		}
	}
	return s, nil
}
