package listing

import (
	"github.com/avolokh/cfp-comb/app/conference"
)

// Source is one conference listing file from the listings directory.
type Source struct {
	Name       string           `yaml:"-"` // derived from filename
	Conference SourceConference `yaml:"conference"`
	Deadlines  SourceDeadlines  `yaml:"deadlines"`
	Enabled    *bool            `yaml:"enabled"`
}

type SourceConference struct {
	Name     string `yaml:"name"`
	Acronym  string `yaml:"acronym"`
	Link     string `yaml:"link"`
	Location string `yaml:"location"`
	Type     string `yaml:"type"`
	Dates    string `yaml:"dates"`
}

// SourceDeadlines carries the narrative deadline text per category; each
// field may embed several dates or none.
type SourceDeadlines struct {
	Submission   string `yaml:"submission"`
	Notification string `yaml:"notification"`
	CameraReady  string `yaml:"camera_ready"`
	Registration string `yaml:"registration"`
	Others       string `yaml:"others"`
}

// IsEnabled defaults to true when the field is omitted.
func (s *Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Record converts the source into the flat labeled-field record the
// reconciler consumes.
func (s *Source) Record() (conference.Record, error) {
	return conference.RecordFromFields(map[string]string{
		conference.FieldName:                  s.Conference.Name,
		conference.FieldAcronym:               s.Conference.Acronym,
		conference.FieldLink:                  s.Conference.Link,
		conference.FieldLocation:              s.Conference.Location,
		conference.FieldType:                  s.Conference.Type,
		conference.FieldConferenceDates:       s.Conference.Dates,
		string(conference.CategorySubmission):   s.Deadlines.Submission,
		string(conference.CategoryNotification): s.Deadlines.Notification,
		string(conference.CategoryCameraReady):  s.Deadlines.CameraReady,
		string(conference.CategoryRegistration): s.Deadlines.Registration,
		string(conference.CategoryOthers):       s.Deadlines.Others,
	})
}
