// Package serving loads trained artifacts once and answers single-record price predictions.
package serving

import (
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/scigo-housing/codec"
	"github.com/YuminosukeSato/scigo-housing/pipeline"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

// DefaultBand is the relative half-width of the displayed price range.
const DefaultBand = 0.10

// Status is the trained state of an artifact directory.
type Status int

const (
	// Untrained means at least one required artifact is missing.
	Untrained Status = iota
	// Trained means every required artifact is present.
	Trained
)

func (s Status) String() string {
	if s == Trained {
		return "Trained"
	}
	return "Untrained"
}

// State reports whether dir holds a complete set of artifacts.
// It only checks presence; Load validates the contents.
func State(dir string) Status {
	if len(missingFiles(dir)) > 0 {
		return Untrained
	}
	return Trained
}

// Session holds the loaded codec and model. It is built once by Load and is
// read-only afterwards, so one Session can serve concurrent callers.
type Session struct {
	dir         string
	codec       *codec.Codec
	bundle      pipeline.Bundle
	evaluations []pipeline.Evaluation
	band        float64
	logger      log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithBand sets the relative half-width of the price range (0.10 gives ±10%).
func WithBand(band float64) Option {
	return func(s *Session) { s.band = band }
}

// Load reads the artifacts in dir. A missing or unreadable artifact is a
// ModelUnavailableError; the caller should refuse to serve predictions.
func Load(dir string, opts ...Option) (*Session, error) {
	if missing := missingFiles(dir); len(missing) > 0 {
		return nil, errors.NewModelUnavailableError(dir, missing, nil)
	}

	c, err := codec.Load(dir)
	if err != nil {
		return nil, errors.NewModelUnavailableError(dir, nil, err)
	}
	b, err := pipeline.LoadBundle(filepath.Join(dir, pipeline.ModelFile))
	if err != nil {
		return nil, errors.NewModelUnavailableError(dir, nil, err)
	}
	if !sameColumns(b.Columns, c.Columns()) {
		return nil, errors.NewModelUnavailableError(dir, nil,
			errors.Newf("model was trained on columns %v but the codec produces %v", b.Columns, c.Columns()))
	}

	s := &Session{
		dir:    dir,
		codec:  c,
		bundle: b,
		band:   DefaultBand,
		logger: log.GetLoggerWithName("serving").With(log.RunIDKey, b.RunID, log.ModelNameKey, b.ModelName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.band < 0 || s.band >= 1 {
		return nil, errors.NewValidationError("band", "must be in [0, 1)", s.band)
	}

	// The report is informational; a session can serve without it.
	if f, err := os.Open(filepath.Join(dir, pipeline.ReportFile)); err == nil {
		s.evaluations, err = pipeline.ReadReport(f)
		_ = f.Close()
		if err != nil {
			s.logger.Warn("Ignoring unreadable evaluation report", log.PathKey, dir, "error", err.Error())
		}
	}

	s.logger.Info("Session loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, dir,
		log.FeaturesKey, len(b.Columns),
	)
	return s, nil
}

// ModelName returns the name of the selected candidate.
func (s *Session) ModelName() string { return s.bundle.ModelName }

// RunID returns the id of the training run that produced the artifacts.
func (s *Session) RunID() string { return s.bundle.RunID }

// TrainedAt returns when the artifacts were trained.
func (s *Session) TrainedAt() time.Time { return s.bundle.TrainedAt }

// TestR2 returns the held-out R² of the selected model.
func (s *Session) TestR2() float64 { return s.bundle.TestR2 }

// Columns returns the canonical feature columns.
func (s *Session) Columns() []string { return s.codec.Columns() }

// Categories returns the furnishing categories the codec accepts.
func (s *Session) Categories() []string { return s.codec.Categories() }

// PriceRange returns the lowest and highest training price.
func (s *Session) PriceRange() (float64, float64) { return s.bundle.PriceMin, s.bundle.PriceMax }

// MeanPrice returns the mean training price.
func (s *Session) MeanPrice() float64 { return s.bundle.MeanPrice }

// Evaluations returns the evaluation report, or nil when it was not available.
func (s *Session) Evaluations() []pipeline.Evaluation {
	return append([]pipeline.Evaluation(nil), s.evaluations...)
}

func missingFiles(dir string) []string {
	var missing []string
	for _, f := range pipeline.RequiredFiles {
		if info, err := os.Stat(filepath.Join(dir, f)); err != nil || info.IsDir() {
			missing = append(missing, f)
		}
	}
	return missing
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
