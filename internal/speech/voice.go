package speech

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/agrivaani/agrivaani/internal/lang"
)

// SelectVoice picks the synthesis voice for a language using a three-tier
// fallback:
//
//  1. exact locale match with an India-flavored display name;
//  2. any voice whose primary language subtag matches;
//  3. an English-India voice, or any English voice named for India.
//
// When no tier matches, the zero Voice is returned and playback proceeds
// with the platform default.
func SelectVoice(voices []Voice, l lang.Language) Voice {
	target := l.Locale()
	targetBase, _ := target.Base()

	// Tier 1: exact locale, India-specific variant.
	for _, v := range voices {
		if sameLocale(v.Locale, target) && indiaFlavored(v.Name) {
			return v
		}
	}

	// Tier 2: primary subtag match.
	for _, v := range voices {
		if base, ok := primarySubtag(v.Locale); ok && base == targetBase {
			return v
		}
	}

	// Tier 3: English-India, or any English voice with an India-flavored name.
	enIN := language.MustParse("en-IN")
	enBase, _ := enIN.Base()
	for _, v := range voices {
		if sameLocale(v.Locale, enIN) {
			return v
		}
	}
	for _, v := range voices {
		if base, ok := primarySubtag(v.Locale); ok && base == enBase && indiaFlavored(v.Name) {
			return v
		}
	}

	return Voice{}
}

func sameLocale(locale string, target language.Tag) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	return tag == target
}

func primarySubtag(locale string) (language.Base, bool) {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Base{}, false
	}
	base, _ := tag.Base()
	return base, true
}

func indiaFlavored(name string) bool {
	return strings.Contains(name, "India")
}
