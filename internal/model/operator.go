package model

// TailProfile describes one airframe in an operator's fleet as captured by
// the registry lookup.
type TailProfile struct {
	TailNumber       string  `json:"tail_number"`
	AircraftAgeYears float64 `json:"aircraft_age_years"`
	RegisteredOwner  string  `json:"registered_owner"`
	FractionalOwner  bool    `json:"fractional_owner"`
}

// OperatorProfile is the operator metadata gathered by the upstream
// business-record queries: age, fleet size, safety certifications, and
// bankruptcy history. Ratings are free text as reported ("Platinum Elite",
// "Wingman PRO", "No", empty).
type OperatorProfile struct {
	OperatorName      string             `json:"operator_name"`
	OperatorAgeYears  float64            `json:"operator_age_years"`
	FleetSize         int                `json:"fleet_size"`
	ArgusRating       string             `json:"argus_rating,omitempty"`
	WyvernRating      string             `json:"wyvern_rating,omitempty"`
	BankruptcyHistory []BankruptcyRecord `json:"bankruptcy_history,omitempty"`
	Aircraft          *TailProfile       `json:"aircraft,omitempty"`
}
