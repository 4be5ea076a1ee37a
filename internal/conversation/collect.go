package conversation

import (
	"context"
	"strings"

	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

// handleCollectInfo fills the first unset slot. Slots are filled strictly in
// order: name, phone, preferred time, special requirements.
func (m *Machine) handleCollectInfo(ctx context.Context, s *session.Session, p session.CollectInfo, in Input) Outcome {
	slots := p.Slots
	switch {
	case slots.Name == "":
		name, err := ParseName(in.Raw)
		if err != nil {
			return Outcome{Reply: m.t(s, i18n.KeyInvalidName, nil), Failure: err}
		}
		p.Slots.Name = name
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyAskPhone, i18n.Params{"Name": name})}

	case slots.Phone == "":
		phone, err := ExtractPhone(in.Raw)
		if err != nil {
			return Outcome{Reply: m.t(s, i18n.KeyInvalidPhone, nil), Failure: err}
		}
		p.Slots.Phone = phone
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyAskTime, nil)}

	case slots.PreferredTime == "":
		when, err := ParsePreferredTime(in.Raw, s.Language)
		if err != nil {
			return Outcome{Reply: m.t(s, i18n.KeyInvalidTime, nil), Failure: err}
		}
		p.Slots.PreferredTime = when
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyAskRequirements, nil)}

	case slots.SpecialRequirements == "":
		return m.collectRequirements(ctx, s, p, in)
	}

	// Every slot is filled but the previous booking attempt failed.
	return m.finalize(ctx, s, p)
}

func (m *Machine) collectRequirements(ctx context.Context, s *session.Session, p session.CollectInfo, in Input) Outcome {
	if p.Slots.AwaitingFreeformRequirement {
		text := strings.Join(strings.Fields(in.Raw), " ")
		if text == "" {
			return Outcome{Reply: m.t(s, i18n.KeyAskFreeform, nil), Failure: &ValidationError{Slot: SlotRequirements}}
		}
		p.Slots.SpecialRequirements = text
		p.Slots.AwaitingFreeformRequirement = false
		return m.finalize(ctx, s, p)
	}

	value, freeform, err := ParseRequirementChoice(in.Text)
	switch {
	case err != nil:
		reply := m.t(s, i18n.KeyInvalidRequirements, nil) + "\n" + m.t(s, i18n.KeyAskRequirements, nil)
		return Outcome{Reply: reply, Failure: err}
	case freeform:
		p.Slots.AwaitingFreeformRequirement = true
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyAskFreeform, nil)}
	}
	p.Slots.SpecialRequirements = value
	return m.finalize(ctx, s, p)
}
