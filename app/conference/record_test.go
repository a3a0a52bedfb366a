package conference

import (
	"testing"
)

func TestRecordFromFields(t *testing.T) {
	rec, err := RecordFromFields(map[string]string{
		"Name":              "  Example Conference ",
		"Acronym":           "EXC",
		"Link":              "https://example.org/exc",
		"Location":          "Lisbon, Portugal",
		"Type":              "Offline (in-person)",
		"Conference dates":  "June 1 – June 3, 2030",
		"Submission date":   "Papers due: January 10, 2030",
		"Registration date": "   ",
		"Topics":            "ignored free-text field",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if rec.Name != "Example Conference" {
		t.Errorf("Expected trimmed name, got %q", rec.Name)
	}
	if rec.AccessType != "Offline (in-person)" {
		t.Errorf("Expected Type to map to AccessType, got %q", rec.AccessType)
	}
	if rec.ConferenceDates != "June 1 – June 3, 2030" {
		t.Errorf("Expected conference dates to be kept, got %q", rec.ConferenceDates)
	}

	if _, ok := rec.Deadlines[CategorySubmission]; !ok {
		t.Error("Expected submission deadline text to be kept")
	}
	if _, ok := rec.Deadlines[CategoryRegistration]; ok {
		t.Error("Expected blank registration field to be dropped")
	}
	if _, ok := rec.Deadlines[CategoryOthers]; ok {
		t.Error("Expected absent Others field to be dropped")
	}
}

func TestRecordFromFieldsRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing name", map[string]string{"Acronym": "X", "Conference dates": "June 1 – June 3, 2030"}},
		{"missing acronym", map[string]string{"Name": "X", "Conference dates": "June 1 – June 3, 2030"}},
		{"missing dates", map[string]string{"Name": "X", "Acronym": "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RecordFromFields(tt.fields); err == nil {
				t.Error("Expected validation error, got none")
			}
		})
	}
}
