package governance

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is one of the closed set of display locales.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
	LocaleUK Locale = "uk"
)

// Locales lists the supported locales. The first entry is the fallback.
var Locales = []Locale{LocaleEN, LocaleRU, LocaleUK}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Russian,
	language.Ukrainian,
})

// ParseLocale maps an arbitrary BCP 47 tag or Accept-Language value onto the
// closed locale set. Unknown or empty input resolves to English.
func ParseLocale(s string) Locale {
	if s == "" {
		return LocaleEN
	}
	_, idx := language.MatchStrings(localeMatcher, s)
	return Locales[idx]
}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	switch l {
	case LocaleEN, LocaleRU, LocaleUK:
		return true
	}
	return false
}

// Tag returns the language tag for l.
func (l Locale) Tag() language.Tag {
	switch l {
	case LocaleRU:
		return language.Russian
	case LocaleUK:
		return language.Ukrainian
	default:
		return language.English
	}
}

// Printer returns a message printer that formats numbers for l.
func (l Locale) Printer() *message.Printer {
	return message.NewPrinter(l.Tag())
}
