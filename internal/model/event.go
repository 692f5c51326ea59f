// Package model defines the shared data types for the TrustScore pipeline:
// incident events, UCC filings, scoring inputs, and score results.
package model

// Event is a single incident record from a public safety data source
// (NTSB accident database, FAA enforcement actions). Records are produced
// upstream and consumed read-only by scoring; any field may be missing.
type Event struct {
	EventID     string `json:"event_id,omitempty"`
	EventDate   string `json:"event_date,omitempty"` // as received from the source; parsed lazily
	EventType   string `json:"event_type,omitempty"` // free text: "Accident", "Incident", "FAA Enforcement", ...
	InjuryLevel string `json:"injury_level,omitempty"`
	Severity    string `json:"severity,omitempty"` // free text severity label, if the source provides one
	Location    string `json:"location,omitempty"`
}

// BankruptcyRecord is a single bankruptcy filing attributed to an operator.
type BankruptcyRecord struct {
	Date   string `json:"date,omitempty"`
	Status string `json:"status,omitempty"` // "active", "discharged", ...
	Type   string `json:"type,omitempty"`   // "Chapter 7", "Chapter 11", ...
}
