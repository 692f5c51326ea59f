package model

// FilingStatus is the canonical lifecycle status of a UCC filing.
type FilingStatus string

const (
	FilingActive     FilingStatus = "Active"
	FilingLapsed     FilingStatus = "Lapsed"
	FilingTerminated FilingStatus = "Terminated"
	FilingUnknown    FilingStatus = "Unknown"
)

// SourceKind identifies the shape of a raw filing query result. New source
// shapes are added by declaring a new constant here and registering a
// handler in the normalize package; downstream consumers only ever see
// NormalizedFiling.
type SourceKind string

const (
	// SourceCompactAPI is a bulk-search API response: a debtors list where
	// the filing date is encoded inside the filing number and no secured
	// party or collateral data is available.
	SourceCompactAPI SourceKind = "compact_api"

	// SourceGenericScrape is a scraped per-filing record list with explicit
	// date, status, and party fields.
	SourceGenericScrape SourceKind = "generic_scrape"
)

// CompactDebtor is one entry of a compact/API-shape result.
type CompactDebtor struct {
	Name       string `json:"name"`
	UCCNumber  string `json:"uccNumber"`
	Status     string `json:"status"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	ZipCode    string `json:"zipCode,omitempty"`
}

// GenericFiling is one entry of a generic/scraped-shape result. Field names
// vary per jurisdiction; DebtorName and Debtor are aliases for the same
// concept and the normalizer prefers the former.
type GenericFiling struct {
	FileNumber   string `json:"file_number,omitempty"`
	DebtorName   string `json:"debtor_name,omitempty"`
	Debtor       string `json:"debtor,omitempty"`
	FilingDate   string `json:"filing_date,omitempty"`
	LapseDate    string `json:"lapse_date,omitempty"`
	Status       string `json:"status,omitempty"`
	SecuredParty string `json:"secured_party,omitempty"`
	Collateral   string `json:"collateral,omitempty"`
}

// RawFilingPage is one jurisdiction's raw UCC query result, tagged with the
// source shape it was captured in. Exactly one of Debtors or Filings is
// populated, matching Source.
type RawFilingPage struct {
	Jurisdiction string          `json:"jurisdiction"`
	Source       SourceKind      `json:"source"`
	Debtors      []CompactDebtor `json:"debtors,omitempty"`
	Filings      []GenericFiling `json:"filings,omitempty"`
}

// DateUnknown is the sentinel used when a filing date cannot be determined.
const DateUnknown = "Unknown"

// NormalizedFiling is the canonical filing shape all scoring code consumes.
// FilingDate is ISO YYYY-MM-DD or the literal "Unknown"; Status is always
// one of the four canonical values.
type NormalizedFiling struct {
	FilingDate   string       `json:"filing_date"`
	LapseDate    string       `json:"lapse_date,omitempty"` // resolution date, when the source reports one
	Status       FilingStatus `json:"status"`
	DebtorName   string       `json:"debtor_name"`
	FileNumber   *string      `json:"file_number"`
	SecuredParty *string      `json:"secured_party"`
	Collateral   *string      `json:"collateral"`
	Address      string       `json:"address,omitempty"`
}
