package conversation

import (
	"context"
	"strings"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/events"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

// checkPreconditions verifies the slot set before a booking is requested.
func checkPreconditions(p session.CollectInfo) error {
	switch {
	case strings.TrimSpace(p.Property.ID) == "":
		return &PreconditionError{Field: "property"}
	case strings.TrimSpace(p.Slots.Name) == "":
		return &PreconditionError{Field: SlotName}
	case !ValidPhone(p.Slots.Phone):
		return &PreconditionError{Field: SlotPhone}
	case strings.TrimSpace(p.Slots.PreferredTime) == "":
		return &PreconditionError{Field: SlotTime}
	}
	return nil
}

// finalize books the visit for a filled slot set. The slots are kept in
// CollectInfo when anything fails so the next message can retry.
func (m *Machine) finalize(ctx context.Context, s *session.Session, p session.CollectInfo) Outcome {
	s.Phase = p
	if err := checkPreconditions(p); err != nil {
		m.logger.Warn("booking precondition failed", "user_id", s.UserID, "error", err)
		return Outcome{Reply: m.t(s, i18n.KeyPreconditionFailed, nil), Failure: err}
	}

	req := bookings.Request{
		UserID:        s.UserID,
		PropertyID:    p.Property.ID,
		PropertyTitle: p.Property.Title,
		Name:          p.Slots.Name,
		Phone:         p.Slots.Phone,
		TimeText:      p.Slots.PreferredTime,
		Notes:         p.Slots.SpecialRequirements,
		Language:      string(s.Language),
	}
	var appointmentID string
	err := m.call(ctx, "booking", func(ctx context.Context) error {
		var err error
		appointmentID, err = m.bookings.CreateBooking(ctx, req)
		return err
	})
	if err != nil {
		return Outcome{Reply: m.t(s, i18n.KeyBookingFailed, nil), Failure: err}
	}

	done := session.Completed{Property: p.Property, Info: p.Slots, AppointmentID: appointmentID}
	s.Phase = done
	s.AppointmentHistory = append(s.AppointmentHistory, appointmentID)
	m.logger.Info("site visit booked", "user_id", s.UserID, "appointment_id", appointmentID, "property_id", p.Property.ID)

	confirmation := m.t(s, i18n.KeyBookingConfirmed, i18n.Params{
		"Title":         p.Property.Title,
		"Name":          p.Slots.Name,
		"Phone":         p.Slots.Phone,
		"Time":          p.Slots.PreferredTime,
		"Requirements":  requirementLabel(m.loc, s.Language, p.Slots.SpecialRequirements),
		"AppointmentID": appointmentID,
	})
	return Outcome{
		Reply:   confirmation + "\n\n" + m.t(s, i18n.KeyCompletedMenu, nil),
		Effects: m.bookingEffects(s, done),
	}
}

// bookingEffects builds the fire-and-forget work that follows a booking.
func (m *Machine) bookingEffects(s *session.Session, done session.Completed) []Effect {
	at := s.LastActivityAt
	operator := i18n.Params{
		"AppointmentID": done.AppointmentID,
		"PropertyID":    done.Property.ID,
		"Title":         done.Property.Title,
		"Location":      done.Property.Location,
		"Name":          done.Info.Name,
		"Phone":         done.Info.Phone,
		"Time":          done.Info.PreferredTime,
		"Requirements":  requirementLabel(m.loc, i18n.English, done.Info.SpecialRequirements),
		"Language":      string(s.Language),
	}

	var effects []Effect
	if m.notifier != nil {
		for _, n := range []struct {
			channel string
			key     i18n.Key
		}{
			{ChannelAgentSMS, i18n.KeyAgentAlert},
			{ChannelCRM, i18n.KeyCRMLog},
			{ChannelEmail, i18n.KeyEmailAlert},
		} {
			channel, text := n.channel, m.loc.T(n.key, i18n.English, operator)
			effects = append(effects, Effect{Name: "notify_" + channel, Run: func(ctx context.Context) error {
				return m.notifier.Notify(ctx, channel, text)
			}})
		}
	}

	if m.publisher != nil {
		payload := events.AppointmentBookedV1{
			AppointmentID: done.AppointmentID,
			UserID:        s.UserID,
			PropertyID:    done.Property.ID,
			PropertyTitle: done.Property.Title,
			Location:      done.Property.Location,
			Name:          done.Info.Name,
			Phone:         done.Info.Phone,
			PreferredTime: done.Info.PreferredTime,
			Requirements:  done.Info.SpecialRequirements,
			Language:      string(s.Language),
			BookedAt:      at,
		}
		effects = append(effects, Effect{Name: "publish_event", Run: func(ctx context.Context) error {
			env, err := events.NewEnvelope(events.TypeAppointmentBooked, done.AppointmentID, payload)
			if err != nil {
				return err
			}
			return m.publisher.Publish(ctx, env)
		}})
	}

	if m.archive != nil {
		rec := archive.AppointmentRecord{
			AppointmentID: done.AppointmentID,
			UserID:        s.UserID,
			PropertyID:    done.Property.ID,
			PropertyTitle: done.Property.Title,
			Location:      done.Property.Location,
			Price:         done.Property.Price,
			KeyAmenities:  done.Property.KeyAmenities,
			Name:          done.Info.Name,
			Phone:         done.Info.Phone,
			PreferredTime: done.Info.PreferredTime,
			Requirements:  done.Info.SpecialRequirements,
			Language:      string(s.Language),
			BookedAt:      at,
		}
		effects = append(effects, Effect{Name: "archive_appointment", Run: func(ctx context.Context) error {
			return m.archive.RecordAppointment(ctx, rec)
		}})
	}
	return effects
}
