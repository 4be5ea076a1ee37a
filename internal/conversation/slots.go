package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wolfman30/realestate-concierge/internal/i18n"
)

const (
	SlotName         = "name"
	SlotPhone        = "phone"
	SlotTime         = "preferred_time"
	SlotRequirements = "special_requirements"

	minNameRunes = 2
	maxNameRunes = 60
)

var (
	phonePattern    = regexp.MustCompile(`^[0-9]{10}$`)
	phoneRunPattern = regexp.MustCompile(`\+?[0-9][0-9 \-.()]*[0-9]`)
	datePattern     = regexp.MustCompile(`(?:^|[^0-9])([0-9]{1,2})[/.\-]([0-9]{1,2})[/.\-]([0-9]{4})(?:[^0-9]|$)`)
	phoneLabels     = []string{"phone number", "phone no", "mobile number", "mobile no", "phone", "mobile", "mob", "ph", "contact", "फोन नंबर", "मोबाईल नंबर", "फोन", "मोबाईल", "नंबर"}
	titleCaser      = cases.Title(language.Und)
)

// ValidPhone reports whether s is a stored-form phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ParseName trims and collapses the name, requires a letter and no digits,
// and title-cases it.
func ParseName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	n := utf8.RuneCountInString(name)
	if n < minNameRunes || n > maxNameRunes {
		return "", &ValidationError{Slot: SlotName}
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsDigit(r):
			return "", &ValidationError{Slot: SlotName}
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	if !hasLetter {
		return "", &ValidationError{Slot: SlotName}
	}
	return titleCaser.String(name), nil
}

// ExtractPhone finds exactly one mobile number in raw. Devanagari digits,
// labels such as "Phone:" and separators are accepted; a +91 or leading 0
// trunk prefix is dropped.
func ExtractPhone(raw string) (string, error) {
	text := strings.ToLower(NormalizeDigits(strings.TrimSpace(raw)))
	for _, label := range phoneLabels {
		if strings.HasPrefix(text, label) {
			text = strings.TrimLeft(text[len(label):], " :-=#")
			break
		}
	}

	var found []string
	for _, run := range phoneRunPattern.FindAllString(text, -1) {
		if phone, ok := phoneFromRun(run); ok {
			found = append(found, phone)
			continue
		}
		// "9876543210 10am" joins two runs; try the space separated parts.
		for _, part := range strings.Fields(run) {
			if phone, ok := phoneFromRun(part); ok {
				found = append(found, phone)
			}
		}
	}
	if len(found) != 1 {
		return "", &ValidationError{Slot: SlotPhone}
	}
	return found[0], nil
}

func phoneFromRun(run string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, run)
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	return digits, ValidPhone(digits)
}

// ParsePreferredTime accepts any non-empty text and stores it verbatim. When
// a real DD/MM/YYYY date is present the localized weekday is appended.
func ParsePreferredTime(raw string, lang i18n.Language) (string, error) {
	text := strings.Join(strings.Fields(raw), " ")
	if !strings.ContainsFunc(text, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return "", &ValidationError{Slot: SlotTime}
	}
	if day, ok := findDate(NormalizeDigits(text)); ok {
		text += " (" + i18n.Weekday(lang, day.Weekday()) + ")"
	}
	return text, nil
}

func findDate(text string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// requirementOption is one canned answer to the special requirements menu.
// Value is what gets stored; Key localizes it for display.
type requirementOption struct {
	Value    string
	Key      i18n.Key
	Synonyms []string
}

var requirementOptions = []requirementOption{
	{Value: "None", Key: i18n.KeyReqNone, Synonyms: []string{"none", "no", "nothing", "nope", "काही नाही", "नाही"}},
	{Value: "Parking", Key: i18n.KeyReqParking, Synonyms: []string{"parking", "पार्किंग"}},
	{Value: "Wheelchair access", Key: i18n.KeyReqWheelchair, Synonyms: []string{"wheelchair", "wheelchair access", "व्हीलचेअर"}},
	{Value: "Vastu-compliant", Key: i18n.KeyReqVastu, Synonyms: []string{"vastu", "vastu compliant", "vastu-compliant", "वास्तु"}},
}

const freeformChoice = 5

var freeformSynonyms = []string{"other", "others", "इतर"}

// ParseRequirementChoice maps a menu answer to a canned requirement. When
// freeform is true the user asked to type their own.
func ParseRequirementChoice(text string) (value string, freeform bool, err error) {
	if n, ok := parseChoice(text); ok {
		switch {
		case n >= 1 && n <= len(requirementOptions):
			return requirementOptions[n-1].Value, false, nil
		case n == freeformChoice:
			return "", true, nil
		}
		return "", false, &ValidationError{Slot: SlotRequirements}
	}
	for _, opt := range requirementOptions {
		if isOneOf(text, opt.Synonyms...) {
			return opt.Value, false, nil
		}
	}
	if isOneOf(text, freeformSynonyms...) {
		return "", true, nil
	}
	return "", false, &ValidationError{Slot: SlotRequirements}
}

// requirementLabel localizes a canned requirement; free text is shown as typed.
func requirementLabel(loc *i18n.Localizer, lang i18n.Language, stored string) string {
	if stored == "" {
		return loc.T(i18n.KeyNotSpecified, lang, nil)
	}
	for _, opt := range requirementOptions {
		if opt.Value == stored {
			return loc.T(opt.Key, lang, nil)
		}
	}
	return stored
}
