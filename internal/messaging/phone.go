package messaging

import (
	"regexp"
	"strings"
)

var phoneDigitsRe = regexp.MustCompile(`\d+`)

// NormalizeE164 ensures the value begins with + and only contains digits afterward.
func NormalizeE164(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

func sanitizePhone(value string) string {
	if value == "" {
		return ""
	}
	return strings.Join(phoneDigitsRe.FindAllString(value, -1), "")
}

// UserIDForPhone derives the conversation key for an SMS sender.
func UserIDForPhone(phone string) string {
	digits := sanitizePhone(phone)
	if digits == "" {
		return ""
	}
	return "sms:" + digits
}

// PhoneForUserID reverses UserIDForPhone. It reports false for ids that did
// not originate from SMS.
func PhoneForUserID(userID string) (string, bool) {
	digits, ok := strings.CutPrefix(userID, "sms:")
	if !ok || digits == "" {
		return "", false
	}
	return "+" + digits, true
}
