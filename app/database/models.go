package database

import (
	"time"
)

// Conference is identified by the (name, acronym) natural key. Rows are
// immutable after creation; repeated runs only look them up.
type Conference struct {
	ID        string // Database UUID
	Name      string
	Acronym   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CallForPapers is one submission window of a conference. Status is true
// while the start date is still in the future; at most one CFP per
// conference is active at a time, and expired rows are retained as history
// but never mutated.
type CallForPapers struct {
	ID           string
	ConferenceID string
	StartDate    time.Time
	EndDate      time.Time
	Location     string
	Link         string
	AccessType   string
	Status       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImportantDate is a dated milestone attached to a CFP, unique per
// (cfp_id, date_type). Status mirrors whether the date is still upcoming.
type ImportantDate struct {
	ID        string
	CFPID     string
	DateType  string
	DateValue time.Time
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
