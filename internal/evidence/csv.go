package evidence

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// eventColumns maps the header names seen in NTSB CAROL exports to Event
// fields. Lookup is case-insensitive; the first matching alias wins.
var eventColumns = map[string][]string{
	"event_id":     {"event_id", "ntsb_no", "eventid"},
	"event_date":   {"event_date", "eventdate", "date"},
	"event_type":   {"event_type", "investigation_type", "ev_type"},
	"injury_level": {"injury_level", "highest_injury_level", "highestinjurylevel", "inj_level"},
	"severity":     {"severity", "damage_level", "damage"},
	"location":     {"location", "city", "ev_city"},
}

// LoadEventsCSV reads incident events from a CSV export. The header row is
// required; rows with fewer fields than the header are skipped with a
// warning rather than failing the whole file.
func LoadEventsCSV(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "evidence: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "evidence: read csv header")
	}

	idx, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var events []model.Event
	var skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "evidence: read csv row")
		}

		if len(record) < len(header) {
			skipped++
			continue
		}

		events = append(events, model.Event{
			EventID:     field(record, idx, "event_id"),
			EventDate:   field(record, idx, "event_date"),
			EventType:   field(record, idx, "event_type"),
			InjuryLevel: field(record, idx, "injury_level"),
			Severity:    field(record, idx, "severity"),
			Location:    field(record, idx, "location"),
		})
	}

	if skipped > 0 {
		zap.L().Warn("evidence: skipped short csv rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	zap.L().Debug("evidence: loaded events from csv",
		zap.String("path", path),
		zap.Int("count", len(events)),
	)
	return events, nil
}

// mapColumns resolves header names to column indexes. Only event_date and
// event_type are mandatory; everything else degrades to empty.
func mapColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	idx := make(map[string]int)
	for col, aliases := range eventColumns {
		for _, alias := range aliases {
			if i, ok := byName[alias]; ok {
				idx[col] = i
				break
			}
		}
	}

	for _, required := range []string{"event_date", "event_type"} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("evidence: csv header missing %s column", required)
		}
	}
	return idx, nil
}

func field(record []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
