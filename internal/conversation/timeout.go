package conversation

import (
	"time"

	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

// hardReset silently restarts the flow when the previous message is older
// than the hard reset window.
func (m *Machine) hardReset(s *session.Session, now time.Time) bool {
	if s.LastMessageAt.IsZero() || now.Sub(s.LastMessageAt) <= m.hardResetAfter {
		return false
	}
	s.ResetFlow()
	return true
}

// midFlow lists the states where an idle user is asked whether they are
// still there.
func midFlow(state session.State) bool {
	switch state {
	case session.StateInterestSelection, session.StatePropertyMatch, session.StateScheduleVisit, session.StateCollectInfo:
		return true
	}
	return false
}

// applyInactivity runs the soft inactivity policy. When handled is true the
// message must not be interpreted further.
func (m *Machine) applyInactivity(s *session.Session, in Input) (Outcome, bool) {
	if s.IsInactive {
		s.IsInactive = false
		if matchCommand(in.Text) == cmdEnd {
			s.ResetFlow()
			s.LastActivityAt = in.Now
			return Outcome{Reply: m.t(s, i18n.KeyGoodbye, nil)}, true
		}
		return Outcome{}, false
	}

	if !midFlow(s.State()) || s.LastActivityAt.IsZero() || in.Now.Sub(s.LastActivityAt) <= m.inactivityAfter {
		return Outcome{}, false
	}
	s.IsInactive = true
	m.logger.Debug("session marked inactive", "user_id", s.UserID, "state", s.State())
	return Outcome{Reply: m.t(s, i18n.KeyStillThere, nil)}, true
}
