package conversation

import (
	"context"

	"github.com/wolfman30/realestate-concierge/internal/bookings"
	"github.com/wolfman30/realestate-concierge/internal/documents"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

var (
	backWords     = []string{"0", "back", "menu", "मागे"}
	documentNames = map[documents.Kind]i18n.Key{
		documents.KindBrochure:   i18n.KeyDocBrochure,
		documents.KindFloorPlan:  i18n.KeyDocFloorPlan,
		documents.KindPriceSheet: i18n.KeyDocPriceSheet,
	}

	detailsKeywords   = []string{"details", "detail", "appointment", "booking", "तपशील"}
	documentsKeywords = []string{"documents", "document", "docs", "papers", "कागदपत्र", "कागदपत्रे"}

	// completedMenuKeywords follows the order of the post-booking menu.
	completedMenuKeywords = [][]string{
		detailsKeywords,
		documentsKeywords,
		{"search", "शोध"},
		{"done", "finish", "पूर्ण"},
	}

	documentKeywords = map[documents.Kind][]string{
		documents.KindBrochure:   {"brochure", "ब्रोशर", "माहितीपत्रक"},
		documents.KindFloorPlan:  {"floor", "plan", "layout", "मजला", "आराखडा"},
		documents.KindPriceSheet: {"price", "pricing", "cost", "rate", "किंमत", "दर"},
	}
)

// pickMenuOption reads a menu choice as a number first and then as keywords.
// Keywords only count when they point at exactly one option.
func pickMenuOption(text string, options [][]string) (int, bool) {
	if n, ok := parseChoice(text); ok {
		return n, true
	}
	found, hits := 0, 0
	for i, keywords := range options {
		if hasKeyword(text, keywords) {
			found = i + 1
			hits++
		}
	}
	if hits != 1 {
		return 0, false
	}
	return found, true
}

// matchDocumentKind finds a single document type named in free text.
func matchDocumentKind(text string) (documents.Kind, bool) {
	var found documents.Kind
	hits := 0
	for _, kind := range documents.Kinds {
		if hasKeyword(text, documentKeywords[kind]) {
			found = kind
			hits++
		}
	}
	return found, hits == 1
}

// handleCompleted serves the post-booking menu and its two sub-menus.
func (m *Machine) handleCompleted(ctx context.Context, s *session.Session, p session.Completed, in Input) Outcome {
	switch {
	case p.DocumentSelection:
		return m.handleDocumentSelection(ctx, s, p, in)
	case p.ViewingDetails:
		return m.handleViewingDetails(s, p, in)
	}

	n, _ := pickMenuOption(in.Text, completedMenuKeywords)
	if n == 0 {
		if kind, ok := matchDocumentKind(in.Text); ok {
			p.DocumentSelection = true
			s.Phase = p
			return m.deliverDocument(ctx, s, p.Property.ID, p.Property.Title, kind)
		}
	}
	switch n {
	case 1:
		return m.showAppointment(ctx, s, p)
	case 2:
		p.DocumentSelection = true
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyDocumentMenu, nil)}
	case 3:
		s.ResetFlow()
		return Outcome{Reply: m.t(s, i18n.KeyWelcome, nil)}
	case 4:
		return Outcome{Reply: m.t(s, i18n.KeyGoodbye, nil)}
	}
	return m.reprompt(s, "completed", m.t(s, i18n.KeyCompletedMenu, nil))
}

func (m *Machine) showAppointment(ctx context.Context, s *session.Session, p session.Completed) Outcome {
	var booking *bookings.Booking
	err := m.call(ctx, "booking", func(ctx context.Context) error {
		var err error
		booking, err = m.bookings.GetBooking(ctx, p.AppointmentID)
		return err
	})
	if err != nil {
		return Outcome{
			Reply:   m.t(s, i18n.KeyDetailsUnavailable, nil) + "\n\n" + m.t(s, i18n.KeyCompletedMenu, nil),
			Failure: err,
		}
	}

	p.ViewingDetails = true
	s.Phase = p
	details := m.t(s, i18n.KeyAppointmentDetails, i18n.Params{
		"AppointmentID": booking.ID,
		"Title":         p.Property.Title,
		"Location":      p.Property.Location,
		"Name":          booking.Name,
		"Phone":         booking.Phone,
		"Time":          booking.TimeText,
		"Requirements":  requirementLabel(m.loc, s.Language, booking.Notes),
		"Status":        booking.Status,
	})
	return Outcome{Reply: details + "\n\n" + m.t(s, i18n.KeyDetailsMenu, nil)}
}

func (m *Machine) handleViewingDetails(s *session.Session, p session.Completed, in Input) Outcome {
	switch {
	case isOneOf(in.Text, backWords...):
		p.ViewingDetails = false
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyCompletedMenu, nil)}
	case isOneOf(in.Text, "1") || hasKeyword(in.Text, documentsKeywords):
		p.ViewingDetails = false
		p.DocumentSelection = true
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyDocumentMenu, nil)}
	}
	return m.reprompt(s, "details", m.t(s, i18n.KeyDetailsMenu, nil))
}

func (m *Machine) handleDocumentSelection(ctx context.Context, s *session.Session, p session.Completed, in Input) Outcome {
	if isOneOf(in.Text, backWords...) {
		p.DocumentSelection = false
		s.Phase = p
		return Outcome{Reply: m.t(s, i18n.KeyCompletedMenu, nil)}
	}
	kind, ok := matchDocumentKind(in.Text)
	if n, isNumber := parseChoice(in.Text); isNumber {
		kind, ok = documents.KindFromChoice(n)
	}
	if !ok {
		return m.reprompt(s, "document", m.t(s, i18n.KeyDocumentMenu, nil))
	}
	return m.deliverDocument(ctx, s, p.Property.ID, p.Property.Title, kind)
}

// deliverDocument sends the file as an attachment when a media sender is
// configured, and falls back to replying with the link.
func (m *Machine) deliverDocument(ctx context.Context, s *session.Session, propertyID, title string, kind documents.Kind) Outcome {
	menu := m.t(s, i18n.KeyDocumentMenu, nil)
	if m.documents == nil {
		return Outcome{Reply: m.t(s, i18n.KeyDocumentFailed, nil) + "\n\n" + menu}
	}

	var url string
	err := m.call(ctx, "documents", func(ctx context.Context) error {
		var err error
		url, err = m.documents.Link(ctx, propertyID, kind)
		return err
	})
	if err != nil {
		return Outcome{Reply: m.t(s, i18n.KeyDocumentFailed, nil) + "\n\n" + menu, Failure: err}
	}

	params := i18n.Params{"Document": m.t(s, documentNames[kind], nil), "Title": title, "URL": url}
	if m.media != nil {
		caption := m.t(s, i18n.KeyDocumentCaption, params) + "\n\n" + menu
		err := m.call(ctx, "media", func(ctx context.Context) error {
			return m.media.SendMedia(ctx, s.UserID, caption, url)
		})
		if err == nil {
			return Outcome{Delivered: true}
		}
		m.logger.Warn("document media send failed, replying with link", "user_id", s.UserID, "kind", kind)
	}
	return Outcome{Reply: m.t(s, i18n.KeyDocumentLink, params) + "\n\n" + menu}
}
