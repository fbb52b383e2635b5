// Package lang defines the closed set of languages the assistant speaks.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Language identifies one of the four supported assistant languages.
// Anything outside the set is coerced to English rather than rejected.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Telugu  Language = "telugu"
	Urdu    Language = "urdu"
)

// All lists every supported language in a stable order.
func All() []Language {
	return []Language{English, Hindi, Telugu, Urdu}
}

// Parse maps a user-supplied name to a supported Language.
// Unknown values fall back to English.
func Parse(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Hindi:
		return Hindi
	case Telugu:
		return Telugu
	case Urdu:
		return Urdu
	default:
		return English
	}
}

// Locale returns the BCP-47 tag used for speech capture and synthesis.
func (l Language) Locale() language.Tag {
	switch l {
	case Hindi:
		return language.MustParse("hi-IN")
	case Telugu:
		return language.MustParse("te-IN")
	case Urdu:
		return language.MustParse("ur-PK")
	default:
		return language.MustParse("en-IN")
	}
}

// LocaleString returns the locale tag in its canonical string form.
func (l Language) LocaleString() string {
	return l.Locale().String()
}
