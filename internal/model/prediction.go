package model

import "time"

// RiskLevel is the discrete risk band derived from the model
// probability plus rule-based critical-factor adjustment.
type RiskLevel string

const (
	RiskNormal   RiskLevel = "Normal"
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"

	// RiskUnknown is only produced by the error response shape.
	RiskUnknown RiskLevel = "Unknown"
)

// Rank orders risk levels from Normal (0) to Critical (4).
// RiskUnknown ranks below Normal.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskNormal:
		return 0
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return -1
	}
}

// Prediction is the fully populated result of scoring one snapshot.
// On success every field is set; on failure the numeric fields are
// zeroed, RiskLevel is RiskUnknown and Error carries the cause.
type Prediction struct {
	FailureProbability   float64            `json:"failure_probability"`
	Prediction           int                `json:"prediction"`
	FailureType          string             `json:"predicted_failure_type"`
	Confidence           float64            `json:"confidence"`
	RiskLevel            RiskLevel          `json:"risk_level"`
	RiskColor            string             `json:"risk_color"`
	Recommendations      []string           `json:"recommendations"`
	MaintenanceTiming    string             `json:"maintenance_timing"`
	FeatureContributions map[string]float64 `json:"feature_contributions"`
	MissingFeatures      []string           `json:"missing_features,omitempty"`
	ModelAccuracy        float64            `json:"model_accuracy"`
	Timestamp            time.Time          `json:"timestamp"`
	Error                string             `json:"error,omitempty"`
}

// TrainingMetrics summarizes one training run on the held-out split.
type TrainingMetrics struct {
	Accuracy          float64            `json:"accuracy"`
	Precision         float64            `json:"precision"`
	Recall            float64            `json:"recall"`
	F1                float64            `json:"f1_score"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	CVScores          []float64          `json:"cv_scores,omitempty"`
}

// Info describes the current model state for collaborators.
type Info struct {
	IsTrained         bool               `json:"is_trained"`
	Accuracy          float64            `json:"accuracy"`
	ModelType         string             `json:"model_type"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	FeaturesCount     int                `json:"features_count"`
	LastTrained       string             `json:"last_trained"`
}
