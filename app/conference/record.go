package conference

import (
	"fmt"
	"strings"
)

// Labeled keys recognized in a raw listing record.
const (
	FieldName            = "Name"
	FieldAcronym         = "Acronym"
	FieldLink            = "Link"
	FieldLocation        = "Location"
	FieldType            = "Type"
	FieldConferenceDates = "Conference dates"
)

// Record is one conference listing, already split into labeled text
// fields. Deadline fields hold free narrative text; dates are extracted
// from them during reconciliation.
type Record struct {
	Name            string
	Acronym         string
	Link            string
	Location        string
	AccessType      string
	ConferenceDates string
	Deadlines       map[Category]string
}

// RecordFromFields builds a Record from the flat labeled-key mapping used
// by listing sources and the ingest API. Unrecognized keys are ignored;
// missing or empty deadline fields mean there is nothing to reconcile for
// that category.
func RecordFromFields(fields map[string]string) (Record, error) {
	rec := Record{
		Name:            strings.TrimSpace(fields[FieldName]),
		Acronym:         strings.TrimSpace(fields[FieldAcronym]),
		Link:            strings.TrimSpace(fields[FieldLink]),
		Location:        strings.TrimSpace(fields[FieldLocation]),
		AccessType:      strings.TrimSpace(fields[FieldType]),
		ConferenceDates: strings.TrimSpace(fields[FieldConferenceDates]),
		Deadlines:       make(map[Category]string),
	}

	for _, cat := range Categories {
		if text := strings.TrimSpace(fields[string(cat)]); text != "" {
			rec.Deadlines[cat] = text
		}
	}

	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Validate checks the fields without which a record cannot be reconciled.
func (r Record) Validate() error {
	requiredFields := map[string]string{
		FieldName:            r.Name,
		FieldAcronym:         r.Acronym,
		FieldConferenceDates: r.ConferenceDates,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}
	return nil
}
