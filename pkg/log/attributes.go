// Standard attribute keys for the housing pipeline.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so that training and serving logs can be filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the candidate regressor, e.g. "Linear Regression".
	ModelNameKey = "model.name"

	// RunIDKey identifies one training run; it is also stored in the model bundle.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "persist", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnKey   = "data.column"
	PathKey     = "data.path"
)

// Performance Metrics
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	RMSEKey       = "metrics.rmse"
	MAEKey        = "metrics.mae"
)

// Prediction Context
const (
	PredictionKey = "preds.value"
	LowerKey      = "preds.lower"
	UpperKey      = "preds.upper"
)

// Error Context
const (
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Configuration
const (
	RandomSeedKey = "config.random_seed"
	FitScopeKey   = "config.codec_fit_scope"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationPersist   = "persist"
	OperationLoad      = "load"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
	PhaseAnalysis      = "analysis"
)
