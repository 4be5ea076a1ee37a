package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported conversation language.
type Language string

const (
	English Language = "en"
	Marathi Language = "mr"
)

// Supported lists the conversation languages in menu order.
var Supported = []Language{English, Marathi}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Marathi})

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	if l == Marathi {
		return language.Marathi
	}
	return language.English
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == English || l == Marathi
}

// OrDefault returns l, or English when l is not supported.
func (l Language) OrDefault() Language {
	if l.Valid() {
		return l
	}
	return English
}

// ParseLanguage maps a BCP 47 tag or Accept-Language style value ("mr-IN",
// "en-GB,en;q=0.8") onto a supported language. Anything unrecognised is English.
func ParseLanguage(raw string) Language {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	return Supported[idx]
}
