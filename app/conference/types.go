// Package conference reconciles parsed conference listings into the
// database without duplicating rows across repeated runs.
package conference

import (
	"github.com/avolokh/cfp-comb/app/database"
)

// Category is the fixed taxonomy of important-date fields carried by a
// listing. The string values double as the date_type column and as the
// labeled keys of an incoming record.
type Category string

const (
	CategorySubmission   Category = "Submission date"
	CategoryNotification Category = "Notification date"
	CategoryCameraReady  Category = "Camera-ready date"
	CategoryRegistration Category = "Registration date"
	CategoryOthers       Category = "Others"
)

// Categories fixes the processing order so same-key writes within one run
// are deterministic.
var Categories = []Category{
	CategorySubmission,
	CategoryNotification,
	CategoryCameraReady,
	CategoryRegistration,
	CategoryOthers,
}

// Result reports the rows written by one reconciliation.
type Result struct {
	Conference     *database.Conference
	CFP            *database.CallForPapers
	CFPCreated     bool
	ImportantDates []database.ImportantDate

	// SkippedDates holds extracted candidates that failed lenient parsing
	// and were dropped without aborting their sibling categories.
	SkippedDates []string
}
