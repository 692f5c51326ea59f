package normalize

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// handler converts one raw source shape into canonical filings.
type handler func(page model.RawFilingPage) []model.NormalizedFiling

// handlers is the closed dispatch table of known source shapes. Adding a
// source means adding a model.SourceKind constant and an entry here;
// downstream consumers never change.
var handlers = map[model.SourceKind]handler{
	model.SourceCompactAPI:    normalizeCompact,
	model.SourceGenericScrape: normalizeGeneric,
}

// Normalize converts a raw per-jurisdiction filing query result into
// canonical filings. It returns an error only for an unregistered source
// kind, which is a caller bug; malformed or partial records inside a known
// shape degrade to sentinel values.
func Normalize(page model.RawFilingPage) ([]model.NormalizedFiling, error) {
	h, ok := handlers[page.Source]
	if !ok {
		return nil, eris.Errorf("normalize: unknown source kind %q for jurisdiction %q", page.Source, page.Jurisdiction)
	}

	filings := h(page)
	zap.L().Debug("normalize: page normalized",
		zap.String("jurisdiction", page.Jurisdiction),
		zap.String("source", string(page.Source)),
		zap.Int("filings", len(filings)),
	)
	return filings, nil
}

// NormalizeAll normalizes every page, keyed by jurisdiction. Pages with an
// unknown source kind are skipped with a warning so one bad jurisdiction
// cannot sink a multi-state result set.
func NormalizeAll(pages []model.RawFilingPage) map[string][]model.NormalizedFiling {
	out := make(map[string][]model.NormalizedFiling, len(pages))
	for _, page := range pages {
		filings, err := Normalize(page)
		if err != nil {
			zap.L().Warn("normalize: skipping page", zap.String("jurisdiction", page.Jurisdiction), zap.Error(err))
			continue
		}
		out[page.Jurisdiction] = append(out[page.Jurisdiction], filings...)
	}
	return out
}

// normalizeCompact handles bulk-API results: the filing date is recovered
// from the filing number and no secured party or collateral exists in this
// shape, so those stay nil.
func normalizeCompact(page model.RawFilingPage) []model.NormalizedFiling {
	filings := make([]model.NormalizedFiling, 0, len(page.Debtors))
	for _, d := range page.Debtors {
		f := model.NormalizedFiling{
			FilingDate: ExtractDateFromFileNumber(d.UCCNumber),
			Status:     NormalizeStatus(d.Status),
			DebtorName: d.Name,
			Address:    joinAddress(d.Address, d.City, d.State, d.ZipCode),
		}
		if f.DebtorName == "" {
			f.DebtorName = "Unknown"
		}
		if d.UCCNumber != "" {
			n := d.UCCNumber
			f.FileNumber = &n
		}
		filings = append(filings, f)
	}
	return filings
}

// normalizeGeneric handles scraped per-filing records with explicit fields.
func normalizeGeneric(page model.RawFilingPage) []model.NormalizedFiling {
	filings := make([]model.NormalizedFiling, 0, len(page.Filings))
	for _, raw := range page.Filings {
		f := model.NormalizedFiling{
			FilingDate: FormatDate(raw.FilingDate),
			Status:     NormalizeStatus(raw.Status),
			DebtorName: debtorName(raw),
		}
		if raw.LapseDate != "" {
			f.LapseDate = FormatDate(raw.LapseDate)
		}
		if raw.FileNumber != "" {
			n := raw.FileNumber
			f.FileNumber = &n
		}
		if raw.SecuredParty != "" {
			p := raw.SecuredParty
			f.SecuredParty = &p
		}
		if raw.Collateral != "" {
			c := raw.Collateral
			f.Collateral = &c
		}
		filings = append(filings, f)
	}
	return filings
}

// debtorName prefers the explicit debtor_name field, falling back to the
// debtor alias some jurisdictions use.
func debtorName(f model.GenericFiling) string {
	if f.DebtorName != "" {
		return f.DebtorName
	}
	if f.Debtor != "" {
		return f.Debtor
	}
	return "Unknown"
}

func joinAddress(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
