package model

import "time"

// ScoreTier buckets a trust score into the broker-facing rating bands.
type ScoreTier string

const (
	TierPinnacle  ScoreTier = "Pinnacle"  // 90+
	TierPremier   ScoreTier = "Premier"   // 80+
	TierBenchmark ScoreTier = "Benchmark" // 70+
	TierStandard  ScoreTier = "Standard"  // <70
)

// TierFor returns the tier band for a trust score. Thresholds are evaluated
// in descending order; first match wins.
func TierFor(score float64) ScoreTier {
	switch {
	case score >= 90:
		return TierPinnacle
	case score >= 80:
		return TierPremier
	case score >= 70:
		return TierBenchmark
	default:
		return TierStandard
	}
}

// FleetScoreInput carries all evidence needed to score an operator's fleet.
type FleetScoreInput struct {
	OperatorName      string             `json:"operator_name"`
	OperatorAgeYears  float64            `json:"operator_age_years"` // years since business registration
	FleetSize         int                `json:"fleet_size"`
	FleetEvents       []Event            `json:"fleet_events"`
	UCCFilings        []NormalizedFiling `json:"ucc_filings"`
	ArgusRating       string             `json:"argus_rating,omitempty"`
	WyvernRating      string             `json:"wyvern_rating,omitempty"`
	BankruptcyHistory []BankruptcyRecord `json:"bankruptcy_history,omitempty"`
}

// TailScoreInput carries all evidence needed to score one airframe.
type TailScoreInput struct {
	AircraftAgeYears float64 `json:"aircraft_age_years"` // years since tail registration
	OperatorName     string  `json:"operator_name"`
	RegisteredOwner  string  `json:"registered_owner"`
	FractionalOwner  bool    `json:"fractional_owner"`
	TailEvents       []Event `json:"tail_events"`
}

// Component is one named term of a score formula with its human description.
type Component struct {
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// Breakdown explains how a sub-score was assembled from its components.
type Breakdown struct {
	FinalScore  float64              `json:"final_score"`
	Components  map[string]Component `json:"components"`
	Formula     string               `json:"formula"`
	Explanation string               `json:"explanation,omitempty"` // optional LLM prose
}

// ScoreResult is the complete output of one trust score calculation.
// It is constructed fresh per calculation and never mutated.
type ScoreResult struct {
	TrustScore       float64   `json:"trust_score"`
	ScoreTier        ScoreTier `json:"score_tier"`
	FleetScore       float64   `json:"fleet_score"`
	OperatorScore    float64   `json:"operator_score"`
	TailScore        float64   `json:"tail_score"`
	ConfidenceScore  float64   `json:"confidence_score"`
	RawCombinedScore float64   `json:"raw_combined_score"`
	FleetBreakdown   Breakdown `json:"fleet_breakdown"`
	TailBreakdown    Breakdown `json:"tail_breakdown"`
	AIInsights       string    `json:"ai_insights,omitempty"`
	CalculatedAt     time.Time `json:"calculated_at"`
}
