package conversation

import (
	"fmt"

	"github.com/wolfman30/realestate-concierge/internal/session"
)

// transitions is the table of legal state changes for one step.
var transitions = map[session.State][]session.State{
	session.StateLanguageSelection: {session.StateLanguageSelection, session.StateWelcome},
	session.StateWelcome:           {session.StateWelcome, session.StateInterestSelection, session.StateLanguageSelection},
	session.StateInterestSelection: {session.StateInterestSelection, session.StatePropertyMatch, session.StateWelcome, session.StateLanguageSelection},
	session.StatePropertyMatch:     {session.StatePropertyMatch, session.StateScheduleVisit, session.StateWelcome, session.StateLanguageSelection},
	session.StateScheduleVisit:     {session.StateScheduleVisit, session.StateCollectInfo, session.StatePropertyMatch, session.StateWelcome, session.StateLanguageSelection},
	session.StateCollectInfo:       {session.StateCollectInfo, session.StateCompleted, session.StateWelcome, session.StateLanguageSelection},
	session.StateCompleted:         {session.StateCompleted, session.StateWelcome, session.StateLanguageSelection},
}

// CanTransition reports whether to is reachable from from in a single step.
func CanTransition(from, to session.State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func validateTransition(from, to session.State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("conversation: illegal transition %s -> %s", from, to)
	}
	return nil
}
