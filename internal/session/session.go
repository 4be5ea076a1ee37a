package session

import (
	"time"

	"github.com/wolfman30/realestate-concierge/internal/catalog"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
)

// Preferences are the search criteria gathered so far.
type Preferences struct {
	Interest  catalog.Interest `json:"interest,omitempty"`
	Location  string           `json:"location,omitempty"`
	MaxBudget int64            `json:"max_budget,omitempty"`
}

// Criteria converts preferences into a catalog query.
func (p Preferences) Criteria() catalog.Criteria {
	return catalog.Criteria{Interest: p.Interest, Location: p.Location, MaxBudget: p.MaxBudget}
}

// UserInfo is the slot set collected before booking. Empty strings are unset.
type UserInfo struct {
	Name                        string `json:"name,omitempty"`
	Phone                       string `json:"phone,omitempty"`
	PreferredTime               string `json:"preferred_time,omitempty"`
	SpecialRequirements         string `json:"special_requirements,omitempty"`
	AwaitingFreeformRequirement bool   `json:"awaiting_freeform_requirement,omitempty"`
}

// Complete reports whether every slot is filled.
func (u UserInfo) Complete() bool {
	return u.Name != "" && u.Phone != "" && u.PreferredTime != "" && u.SpecialRequirements != ""
}

// Session is the persisted conversation record for one user.
type Session struct {
	UserID             string        `json:"user_id"`
	Language           i18n.Language `json:"language"`
	Preferences        Preferences   `json:"preferences"`
	Phase              Phase         `json:"-"`
	AppointmentHistory []string      `json:"appointment_history,omitempty"`
	LastMessageAt      time.Time     `json:"last_message_at"`
	LastActivityAt     time.Time     `json:"last_activity_at"`
	IsInactive         bool          `json:"is_inactive,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// New returns a fresh session in LanguageSelection.
func New(userID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		Language:  i18n.English,
		Phase:     LanguageSelection{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// State returns the current phase name. A nil phase is LanguageSelection.
func (s *Session) State() State {
	if s.Phase == nil {
		return StateLanguageSelection
	}
	return s.Phase.State()
}

// MatchedProperties returns the most recent catalog result, if the current
// phase carries one.
func (s *Session) MatchedProperties() []catalog.Property {
	switch p := s.Phase.(type) {
	case PropertyMatch:
		return p.Matches
	case ScheduleVisit:
		return p.Matches
	}
	return nil
}

// SelectedProperty returns the listing the user picked, or nil.
func (s *Session) SelectedProperty() *catalog.Property {
	switch p := s.Phase.(type) {
	case ScheduleVisit:
		prop := p.Property()
		return &prop
	case CollectInfo:
		prop := p.Property
		return &prop
	case Completed:
		prop := p.Property
		return &prop
	}
	return nil
}

// UserInfo returns the slots collected in the current flow.
func (s *Session) UserInfo() UserInfo {
	switch p := s.Phase.(type) {
	case CollectInfo:
		return p.Slots
	case Completed:
		return p.Info
	}
	return UserInfo{}
}

// AppointmentID returns the booking created by the current flow, if any.
func (s *Session) AppointmentID() string {
	if p, ok := s.Phase.(Completed); ok {
		return p.AppointmentID
	}
	return ""
}

// ResetFlow clears everything gathered in the current flow and returns to
// Welcome. Language and appointment history are kept.
func (s *Session) ResetFlow() {
	s.Preferences = Preferences{}
	s.Phase = Welcome{}
	s.IsInactive = false
}
