// Package evidence loads the raw inputs a score is built from: incident
// event exports, scraped UCC filing pages, and operator profiles.
package evidence

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// LoadEvents reads a JSON array of incident events.
func LoadEvents(path string) ([]model.Event, error) {
	events, err := decodeJSONFile[[]model.Event](path)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("evidence: loaded events",
		zap.String("path", path),
		zap.Int("count", len(events)),
	)
	return events, nil
}

// LoadFilingPages reads a JSON array of raw UCC filing pages as produced by
// the jurisdiction scrapers.
func LoadFilingPages(path string) ([]model.RawFilingPage, error) {
	pages, err := decodeJSONFile[[]model.RawFilingPage](path)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("evidence: loaded filing pages",
		zap.String("path", path),
		zap.Int("count", len(pages)),
	)
	return pages, nil
}

// LoadOperatorProfile reads a single operator profile object.
func LoadOperatorProfile(path string) (*model.OperatorProfile, error) {
	profile, err := decodeJSONFile[model.OperatorProfile](path)
	if err != nil {
		return nil, err
	}
	if profile.OperatorName == "" {
		return nil, eris.Errorf("evidence: %s: operator_name is required", path)
	}
	return &profile, nil
}

func decodeJSONFile[T any](path string) (T, error) {
	var out T

	f, err := os.Open(path)
	if err != nil {
		return out, eris.Wrap(err, "evidence: open file")
	}
	defer f.Close()

	// Scraper output routinely carries extra fields; decode leniently.
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return out, eris.Wrap(err, "evidence: decode json")
	}
	return out, nil
}
