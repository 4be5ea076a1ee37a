package session

import "github.com/wolfman30/realestate-concierge/internal/catalog"

// State names a conversation phase.
type State string

const (
	StateLanguageSelection State = "LanguageSelection"
	StateWelcome           State = "Welcome"
	StateInterestSelection State = "InterestSelection"
	StatePropertyMatch     State = "PropertyMatch"
	StateScheduleVisit     State = "ScheduleVisit"
	StateCollectInfo       State = "CollectInfo"
	StateCompleted         State = "Completed"

	// StateUnknown is reported for records whose phase could not be decoded.
	StateUnknown State = "Unknown"
)

// States lists every valid phase in flow order.
var States = []State{
	StateLanguageSelection,
	StateWelcome,
	StateInterestSelection,
	StatePropertyMatch,
	StateScheduleVisit,
	StateCollectInfo,
	StateCompleted,
}

// Valid reports whether s is one of the defined phases.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// Phase is the per-state payload of a session. Each variant carries only the
// data that is meaningful in that state.
type Phase interface {
	State() State
	isPhase()
}

type LanguageSelection struct{}

type Welcome struct{}

type InterestSelection struct{}

// PropertyMatch holds the result of the most recent catalog query. An empty
// list is a valid outcome.
type PropertyMatch struct {
	Matches []catalog.Property `json:"matches"`
}

// ScheduleVisit holds the list plus the 0-based index the user picked.
type ScheduleVisit struct {
	Matches  []catalog.Property `json:"matches"`
	Selected int                `json:"selected"`
}

// Property returns the selected listing.
func (p ScheduleVisit) Property() catalog.Property {
	return p.Matches[p.Selected]
}

// CollectInfo is the slot-filling phase for the chosen property.
type CollectInfo struct {
	Property catalog.Property `json:"property"`
	Slots    UserInfo         `json:"slots"`
}

// Completed is the post-booking phase. DocumentSelection and ViewingDetails
// are mutually exclusive sub-menus.
type Completed struct {
	Property          catalog.Property `json:"property"`
	Info              UserInfo         `json:"info"`
	AppointmentID     string           `json:"appointment_id"`
	DocumentSelection bool             `json:"document_selection,omitempty"`
	ViewingDetails    bool             `json:"viewing_details,omitempty"`
}

// Unknown is produced only when a stored record names a phase this build
// does not know.
type Unknown struct {
	Raw string
}

func (LanguageSelection) State() State { return StateLanguageSelection }
func (Welcome) State() State           { return StateWelcome }
func (InterestSelection) State() State { return StateInterestSelection }
func (PropertyMatch) State() State     { return StatePropertyMatch }
func (ScheduleVisit) State() State     { return StateScheduleVisit }
func (CollectInfo) State() State       { return StateCollectInfo }
func (Completed) State() State         { return StateCompleted }
func (Unknown) State() State           { return StateUnknown }

func (LanguageSelection) isPhase() {}
func (Welcome) isPhase()           {}
func (InterestSelection) isPhase() {}
func (PropertyMatch) isPhase()     {}
func (ScheduleVisit) isPhase()     {}
func (CollectInfo) isPhase()       {}
func (Completed) isPhase()         {}
func (Unknown) isPhase()           {}
