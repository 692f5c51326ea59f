// Package trustscore implements the TrustScore risk model: time-decayed
// incident aggregation, financial and certification scoring, and the
// confidence-weighted composition of operator and aircraft sub-scores.
package trustscore

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// CalcConfig holds the tunable parameters of the composition step. The
// component formulas themselves (decay constants, certification tables,
// maintenance curve) are fixed model constants, not configuration.
type CalcConfig struct {
	// OperatorWeight and TailWeight blend the two sub-scores into the raw
	// combined score. They must sum to 1.
	OperatorWeight float64 `yaml:"operator_weight" mapstructure:"operator_weight"`
	TailWeight     float64 `yaml:"tail_weight" mapstructure:"tail_weight"`

	// Baseline and Spread shape the final score: trust = Baseline +
	// Spread·raw·confidence. The neutral-midpoint form (50 + 0.5·raw·CS)
	// compresses low-confidence operators toward 50 instead of toward 0.
	Baseline float64 `yaml:"baseline" mapstructure:"baseline"`
	Spread   float64 `yaml:"spread" mapstructure:"spread"`

	// ConfidenceRate is the exponent of the experience-confidence curve
	// CS = 1 − e^(−rate·age).
	ConfidenceRate float64 `yaml:"confidence_rate" mapstructure:"confidence_rate"`
}

// DefaultCalcConfig returns the production model parameters.
func DefaultCalcConfig() CalcConfig {
	return CalcConfig{
		OperatorWeight: 0.6,
		TailWeight:     0.4,
		Baseline:       50,
		Spread:         0.5,
		ConfidenceRate: 0.384,
	}
}

// Validate checks that a CalcConfig is internally consistent.
func (c CalcConfig) Validate() error {
	var errs []string

	if c.OperatorWeight < 0 || c.TailWeight < 0 {
		errs = append(errs, "weights must be >= 0")
	}
	if math.Abs(c.OperatorWeight+c.TailWeight-1) > 1e-9 {
		errs = append(errs, "operator_weight + tail_weight must equal 1")
	}
	if c.Baseline < 0 || c.Baseline > 100 {
		errs = append(errs, "baseline must be between 0 and 100")
	}
	if c.Spread <= 0 {
		errs = append(errs, "spread must be > 0")
	}
	if c.ConfidenceRate <= 0 {
		errs = append(errs, "confidence_rate must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("trustscore: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
