package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/wolfman30/realestate-concierge/internal/catalog"
	"github.com/wolfman30/realestate-concierge/internal/i18n"
	"github.com/wolfman30/realestate-concierge/internal/session"
)

var (
	englishPicks  = []string{"1", "english", "eng", "en", "इंग्रजी", "इंग्लिश"}
	marathiPicks  = []string{"2", "marathi", "mr", "मराठी"}
	schedulePicks = []string{"1", "schedule", "book", "yes", "y", "ok", "okay", "हो", "होय", "भेट"}
	backPicks     = []string{"2", "back", "list", "no", "मागे", "यादी", "नाही"}
)

func parseLanguagePick(text string) (i18n.Language, bool) {
	switch {
	case isOneOf(text, englishPicks...):
		return i18n.English, true
	case isOneOf(text, marathiPicks...):
		return i18n.Marathi, true
	}
	return "", false
}

func (m *Machine) reprompt(s *session.Session, slot string, prompt string) Outcome {
	return Outcome{
		Reply:   m.t(s, i18n.KeyInvalidChoice, i18n.Params{"Prompt": prompt}),
		Failure: &ValidationError{Slot: slot},
	}
}

func (m *Machine) handleLanguageSelection(s *session.Session, in Input) Outcome {
	lang, ok := parseLanguagePick(in.Text)
	if !ok {
		return m.reprompt(s, "language", m.t(s, i18n.KeyLanguageMenu, nil))
	}
	s.Language = lang
	s.Phase = session.Welcome{}
	return Outcome{Reply: m.t(s, i18n.KeyWelcome, nil)}
}

// handleWelcome acknowledges anything. A language pick also switches the
// language, as the welcome text offers.
func (m *Machine) handleWelcome(s *session.Session, in Input) Outcome {
	if lang, ok := parseLanguagePick(in.Text); ok {
		s.Language = lang
	}
	s.Phase = session.InterestSelection{}
	return Outcome{Reply: m.t(s, i18n.KeyInterestMenu, nil)}
}

func (m *Machine) handleInterestSelection(ctx context.Context, s *session.Session, in Input) Outcome {
	prefs, out, ok := m.interpretInterest(ctx, s, in)
	if !ok {
		return out
	}

	var matches []catalog.Property
	err := m.call(ctx, "catalog", func(ctx context.Context) error {
		var err error
		matches, err = m.catalog.FindMatches(ctx, prefs.Criteria())
		return err
	})
	if err != nil {
		return Outcome{Reply: m.t(s, i18n.KeyCatalogFailed, nil), Failure: err}
	}

	s.Preferences = prefs
	s.Phase = session.PropertyMatch{Matches: matches}
	m.logger.Info("catalog matches", "user_id", s.UserID, "interest", prefs.Interest,
		"location", prefs.Location, "max_budget", prefs.MaxBudget, "count", len(matches))
	if len(matches) == 0 {
		return Outcome{Reply: m.t(s, i18n.KeyNoMatches, nil)}
	}
	return Outcome{Reply: m.renderList(s, matches)}
}

// interpretInterest tries an exact menu number, then category keywords, then
// the extractor. It never guesses: anything else re-prompts.
func (m *Machine) interpretInterest(ctx context.Context, s *session.Session, in Input) (session.Preferences, Outcome, bool) {
	invalid := func(failure error) (session.Preferences, Outcome, bool) {
		out := m.reprompt(s, "interest", m.t(s, i18n.KeyInterestMenu, nil))
		if failure != nil {
			out.Failure = failure
		}
		return session.Preferences{}, out, false
	}

	if n, isNumber := parseChoice(in.Text); isNumber {
		interest, ok := catalog.InterestFromChoice(n)
		if !ok {
			return invalid(nil)
		}
		return session.Preferences{Interest: interest}, Outcome{}, true
	}

	prefs := session.Preferences{}
	if interest, ok := matchInterest(in.Text); ok {
		prefs.Interest = interest
	} else {
		if m.extractor == nil {
			return invalid(nil)
		}
		value, err := m.extract(ctx, ExtractInterest, in.Raw)
		if err != nil {
			return invalid(err)
		}
		interest, ok := catalog.ParseInterest(value)
		if !ok {
			return invalid(nil)
		}
		prefs.Interest = interest
	}

	if budget, ok := ParseBudget(in.Text); ok {
		prefs.MaxBudget = budget
	}
	if m.extractor != nil && len(tokens(in.Text)) > 1 {
		if loc, err := m.extract(ctx, ExtractLocation, in.Raw); err == nil && loc != Unclear {
			prefs.Location = loc
		}
		if prefs.MaxBudget == 0 {
			if raw, err := m.extract(ctx, ExtractBudget, in.Raw); err == nil && raw != Unclear {
				if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
					prefs.MaxBudget = n
				}
			}
		}
	}
	return prefs, Outcome{}, true
}

func (m *Machine) extract(ctx context.Context, kind, text string) (string, error) {
	var value string
	err := m.call(ctx, "extractor", func(ctx context.Context) error {
		var err error
		value, err = m.extractor.Extract(ctx, kind, text)
		return err
	})
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, Unclear) {
		return Unclear, nil
	}
	return value, nil
}

func (m *Machine) handlePropertyMatch(s *session.Session, p session.PropertyMatch, in Input) Outcome {
	if len(p.Matches) == 0 {
		return Outcome{Reply: m.t(s, i18n.KeyNoMatches, nil)}
	}
	idx, ok := parseIndex(in.Text)
	if !ok || idx < 1 || idx > len(p.Matches) {
		return m.reprompt(s, "property", m.renderList(s, p.Matches))
	}
	next := session.ScheduleVisit{Matches: p.Matches, Selected: idx - 1}
	s.Phase = next
	return Outcome{Reply: m.renderDetail(s, next.Property()) + "\n\n" + m.t(s, i18n.KeyScheduleMenu, nil)}
}

func (m *Machine) handleScheduleVisit(s *session.Session, p session.ScheduleVisit, in Input) Outcome {
	switch {
	case isOneOf(in.Text, schedulePicks...):
		s.Phase = session.CollectInfo{Property: p.Property()}
		return Outcome{Reply: m.t(s, i18n.KeyAskName, nil)}
	case isOneOf(in.Text, backPicks...):
		s.Phase = session.PropertyMatch{Matches: p.Matches}
		return Outcome{Reply: m.renderList(s, p.Matches)}
	}
	prompt := m.renderDetail(s, p.Property()) + "\n\n" + m.t(s, i18n.KeyScheduleMenu, nil)
	return m.reprompt(s, "schedule", prompt)
}

func (m *Machine) renderList(s *session.Session, matches []catalog.Property) string {
	items := make([]string, 0, len(matches))
	for i, p := range matches {
		items = append(items, m.t(s, i18n.KeyPropertyItem, i18n.Params{
			"Index":    i + 1,
			"Title":    p.Title,
			"Location": p.Location,
			"Price":    i18n.FormatPrice(s.Language, p.Price),
		}))
	}
	return m.t(s, i18n.KeyPropertyList, i18n.Params{"Items": strings.Join(items, "\n")})
}

func (m *Machine) renderDetail(s *session.Session, p catalog.Property) string {
	area := m.t(s, i18n.KeyNotSpecified, nil)
	if p.AreaSqFt > 0 {
		area = strconv.Itoa(p.AreaSqFt)
	}
	amenities := m.t(s, i18n.KeyNotSpecified, nil)
	if len(p.KeyAmenities) > 0 {
		amenities = strings.Join(p.KeyAmenities, ", ")
	}
	return m.t(s, i18n.KeyPropertyDetail, i18n.Params{
		"Title":     p.Title,
		"Location":  p.Location,
		"Price":     i18n.FormatPrice(s.Language, p.Price),
		"Area":      area,
		"Amenities": amenities,
	})
}
