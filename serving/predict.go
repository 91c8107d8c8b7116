package serving

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

// Prediction is a point estimate with a fixed relative band around it.
// The band is a display heuristic, not a statistical interval.
// Lower <= Upper holds for any sign of Point.
type Prediction struct {
	Point float64
	Lower float64
	Upper float64

	// InObservedRange reports whether Point lies within the training price range.
	InObservedRange bool
}

// Predict transforms r with the trained codec and returns the model's estimate.
// Price on r is ignored.
func (s *Session) Predict(r dataset.Record) (Prediction, error) {
	x, err := s.codec.Transform(r)
	if err != nil {
		return Prediction{}, err
	}

	out, err := s.bundle.Model.Predict(mat.NewDense(1, len(x), x))
	if err != nil {
		return Prediction{}, errors.Wrap(err, "model prediction failed")
	}
	point := out.At(0, 0)
	if err := errors.CheckScalar("serving.Predict", point); err != nil {
		return Prediction{}, err
	}

	p := Prediction{
		Point:           point,
		Lower:           math.Min(point*(1-s.band), point*(1+s.band)),
		Upper:           math.Max(point*(1-s.band), point*(1+s.band)),
		InObservedRange: point >= s.bundle.PriceMin && point <= s.bundle.PriceMax,
	}
	s.logger.Debug("Prediction served",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredictionKey, p.Point,
		log.LowerKey, p.Lower,
		log.UpperKey, p.Upper,
	)
	return p, nil
}

// PredictOne predicts a single record with an explicitly passed session.
// A nil session means no model is loaded.
func PredictOne(s *Session, r dataset.Record) (Prediction, error) {
	if s == nil {
		return Prediction{}, errors.NewModelUnavailableError("", nil, errors.New("no session loaded"))
	}
	return s.Predict(r)
}

// SafePredict is PredictOne with panics converted into errors, for use at the
// serving boundary.
func SafePredict(s *Session, r dataset.Record) (p Prediction, err error) {
	err = errors.SafeExecute("serving.Predict", func() error {
		var perr error
		p, perr = PredictOne(s, r)
		return perr
	})
	return p, err
}

// Message renders a serving error as a user-facing message.
func Message(err error) string {
	var (
		unavailable *errors.ModelUnavailableError
		unknown     *errors.UnknownCategoryError
		panicked    *errors.PanicError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unavailable):
		return "Model not found. Please run training first."
	case errors.As(err, &unknown):
		return fmt.Sprintf("Unrecognized value %q for %s. Expected one of: %s.",
			unknown.Value, unknown.Column, strings.Join(unknown.Known, ", "))
	case errors.As(err, &panicked):
		return "Prediction failed because of an internal error."
	default:
		return fmt.Sprintf("Prediction failed: %v", err)
	}
}
