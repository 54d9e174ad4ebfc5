package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SlackStatus is the presence text and emoji shown on a user's profile
type SlackStatus struct {
	Text  string `firestore:"text" json:"text"`
	Emoji string `firestore:"emoji" json:"emoji"`
}

// IsEmpty reports whether the status carries neither text nor emoji
func (s SlackStatus) IsEmpty() bool {
	return s.Text == "" && s.Emoji == ""
}

// StatusMapping associates a calendar event name with the status to display
// while a matching event is active. CalendarText is unique per user under
// case-insensitive comparison.
type StatusMapping struct {
	CalendarText string      `firestore:"calendar_text" json:"calendarText"`
	Status       SlackStatus `firestore:"slack_status" json:"slackStatus"`
}

// UserSettings holds one user's configuration, keyed by email. SlackToken is
// the credential written by the authorization flow; while it is empty every
// command is blocked. DefaultStatus is nil when explicitly cleared.
type UserSettings struct {
	Email          string          `firestore:"email" json:"email"`
	SlackToken     string          `firestore:"slack_token" json:"slackToken,omitempty" masq:"secret"`
	StatusMappings []StatusMapping `firestore:"status_mappings" json:"statusMappings"`
	DefaultStatus  *SlackStatus    `firestore:"default_status" json:"defaultStatus"`
}

// Validate checks if the UserSettings is valid
func (s *UserSettings) Validate() error {
	if s.Email == "" {
		return goerr.New("user settings email is required")
	}
	return nil
}

// Authorized reports whether the user has completed the authorization flow
func (s *UserSettings) Authorized() bool {
	return s.SlackToken != ""
}

// FindMapping returns the mapping whose CalendarText matches calendarText
// case-insensitively, or nil.
func (s *UserSettings) FindMapping(calendarText string) *StatusMapping {
	for i := range s.StatusMappings {
		if strings.EqualFold(s.StatusMappings[i].CalendarText, calendarText) {
			return &s.StatusMappings[i]
		}
	}
	return nil
}

// UpsertMapping updates the status of an existing mapping matched
// case-insensitively, or appends a new one. An update keeps the mapping's
// position and the casing of the first insertion.
func (s *UserSettings) UpsertMapping(calendarText string, status SlackStatus) {
	if m := s.FindMapping(calendarText); m != nil {
		m.Status = status
		return
	}
	s.StatusMappings = append(s.StatusMappings, StatusMapping{
		CalendarText: calendarText,
		Status:       status,
	})
}

// RemoveMapping deletes the mapping matched case-insensitively and reports
// whether anything was removed.
func (s *UserSettings) RemoveMapping(calendarText string) bool {
	for i := range s.StatusMappings {
		if strings.EqualFold(s.StatusMappings[i].CalendarText, calendarText) {
			s.StatusMappings = append(s.StatusMappings[:i], s.StatusMappings[i+1:]...)
			return true
		}
	}
	return false
}

// SetDefaultStatus overwrites the default status wholesale
func (s *UserSettings) SetDefaultStatus(status SlackStatus) {
	s.DefaultStatus = &status
}

// ClearDefaultStatus resets the default status to the explicit cleared state
func (s *UserSettings) ClearDefaultStatus() {
	s.DefaultStatus = nil
}

// Clone returns a deep copy
func (s *UserSettings) Clone() *UserSettings {
	clone := &UserSettings{
		Email:      s.Email,
		SlackToken: s.SlackToken,
	}
	if s.StatusMappings != nil {
		clone.StatusMappings = make([]StatusMapping, len(s.StatusMappings))
		copy(clone.StatusMappings, s.StatusMappings)
	}
	if s.DefaultStatus != nil {
		status := *s.DefaultStatus
		clone.DefaultStatus = &status
	}
	return clone
}
