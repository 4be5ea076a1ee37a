package i18n

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wolfman30/realestate-concierge/internal/messaging/templates"
)

// Params carries named placeholder values for a message.
type Params map[string]any

// Localizer renders catalog messages. It holds no conversation state.
type Localizer struct {
	renderer *templates.Renderer
	brand    string
}

// NewLocalizer builds a Localizer; brand fills the {{.Brand}} placeholder
// unless a caller supplies its own.
func NewLocalizer(brand string) *Localizer {
	if brand == "" {
		brand = "HomeFinder"
	}
	return &Localizer{renderer: templates.NewRenderer(), brand: brand}
}

// Render returns the text for key in lang. Keys without a translation fall
// back to English.
func (l *Localizer) Render(key Key, lang Language, params Params) (string, error) {
	lang = lang.OrDefault()
	texts, ok := catalog[key]
	if !ok {
		return "", fmt.Errorf("i18n: unknown message key %q", key)
	}
	text, ok := texts[lang]
	if !ok {
		lang = English
		text, ok = texts[English]
		if !ok {
			return "", fmt.Errorf("i18n: no text for %q", key)
		}
	}
	data := make(map[string]any, len(params)+1)
	data["Brand"] = l.brand
	for k, v := range params {
		data[k] = v
	}
	return l.renderer.Render(string(key)+"."+string(lang), text, data)
}

// T is Render for callers that cannot act on a render failure; it returns
// the key name instead so the problem is visible in the reply.
func (l *Localizer) T(key Key, lang Language, params Params) string {
	out, err := l.Render(key, lang, params)
	if err != nil {
		return string(key)
	}
	return out
}

// Weekday returns the localized name of a weekday.
func Weekday(lang Language, day time.Weekday) string {
	if lang == Marathi {
		return marathiWeekdays[day]
	}
	return day.String()
}

// FormatPrice renders a rupee amount with Indian digit grouping
// (₹85,00,000). Non-positive amounts render as "on request".
func FormatPrice(lang Language, amount int64) string {
	if amount <= 0 {
		if lang == Marathi {
			return "विनंतीनुसार"
		}
		return "on request"
	}
	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= 3 {
		return "₹" + digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var out []byte
	for i := len(head); i > 0; i -= 2 {
		start := i - 2
		if start < 0 {
			start = 0
		}
		group := head[start:i]
		if len(out) > 0 {
			out = append([]byte(group+","), out...)
		} else {
			out = []byte(group)
		}
	}
	return "₹" + string(out) + "," + tail
}
