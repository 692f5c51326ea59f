package trustscore

import (
	"strings"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// Severity weights for incident records. A fatal accident dominates every
// other signal; anything unrecognized is scored as a minor event rather
// than rejected, since event labels come from free-text public records.
const (
	severityFatalAccident = 50
	severityAccident      = 25
	severitySerious       = 15
	severityMajor         = 10
	severityMinor         = 5
)

// EventSeverity maps an incident record to its numeric severity weight.
// Branches are ordered: the fatal-accident check must win over the plain
// accident check, which must win over the serious/major fallbacks.
func EventSeverity(e model.Event) float64 {
	eventType := strings.ToLower(e.EventType)
	injury := strings.ToLower(e.InjuryLevel)
	severity := strings.ToLower(e.Severity)

	switch {
	case strings.Contains(eventType, "accident") && strings.Contains(injury, "fatal"):
		return severityFatalAccident
	case strings.Contains(eventType, "accident"):
		return severityAccident
	case strings.Contains(eventType, "serious") || strings.Contains(injury, "serious"):
		return severitySerious
	case strings.Contains(eventType, "major") || strings.Contains(severity, "major"):
		return severityMajor
	default:
		return severityMinor
	}
}
