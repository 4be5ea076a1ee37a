package session

import (
	"encoding/json"
	"fmt"
)

type phaseEnvelope struct {
	State State           `json:"state"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodePhase(p Phase) (phaseEnvelope, error) {
	switch v := p.(type) {
	case nil:
		return phaseEnvelope{State: StateLanguageSelection}, nil
	case Unknown:
		return phaseEnvelope{State: State(v.Raw)}, nil
	case LanguageSelection, Welcome, InterestSelection:
		return phaseEnvelope{State: v.State()}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return phaseEnvelope{}, fmt.Errorf("session: failed to encode phase %s: %w", p.State(), err)
	}
	return phaseEnvelope{State: p.State(), Data: data}, nil
}

// decodePhase never fails: anything it cannot interpret becomes Unknown so
// the engine can recover the conversation.
func decodePhase(env *phaseEnvelope) Phase {
	if env == nil {
		return Unknown{}
	}
	var (
		p   Phase
		err error
	)
	switch env.State {
	case StateLanguageSelection:
		p = LanguageSelection{}
	case StateWelcome:
		p = Welcome{}
	case StateInterestSelection:
		p = InterestSelection{}
	case StatePropertyMatch:
		var v PropertyMatch
		err = unmarshalData(env.Data, &v)
		p = v
	case StateScheduleVisit:
		var v ScheduleVisit
		err = unmarshalData(env.Data, &v)
		if err == nil && (v.Selected < 0 || v.Selected >= len(v.Matches)) {
			err = fmt.Errorf("selection %d out of range", v.Selected)
		}
		p = v
	case StateCollectInfo:
		var v CollectInfo
		err = unmarshalData(env.Data, &v)
		p = v
	case StateCompleted:
		var v Completed
		err = unmarshalData(env.Data, &v)
		p = v
	default:
		return Unknown{Raw: string(env.State)}
	}
	if err != nil {
		return Unknown{Raw: string(env.State)}
	}
	return p
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("missing phase data")
	}
	return json.Unmarshal(data, v)
}

// MarshalJSON writes the phase as a {"state","data"} envelope.
func (s Session) MarshalJSON() ([]byte, error) {
	type alias Session
	env, err := encodePhase(s.Phase)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		alias
		Phase phaseEnvelope `json:"phase"`
	}{alias: alias(s), Phase: env})
}

// UnmarshalJSON restores the phase envelope; unrecognised phases decode to Unknown.
func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	aux := struct {
		*alias
		Phase *phaseEnvelope `json:"phase"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Phase = decodePhase(aux.Phase)
	return nil
}

// Encode serializes a session for storage.
func Encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("session: failed to marshal: %w", err)
	}
	return data, nil
}

// Decode restores a stored session.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: failed to decode: %w", err)
	}
	return &s, nil
}

// Clone returns a deep copy via the storage encoding.
func Clone(s *Session) (*Session, error) {
	data, err := Encode(s)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
