// Package intent classifies free-text farming questions into a closed set of
// topics using a keyword table spanning all four assistant languages.
package intent

import (
	"strings"

	"github.com/agrivaani/agrivaani/internal/lang"
)

// Topic is the closed set of intents the assistant recognizes.
type Topic int

const (
	// Fallback is the zero topic: nothing matched.
	Fallback Topic = iota
	Weather
	MarketPrice
	CropAdvice
)

func (t Topic) String() string {
	switch t {
	case Weather:
		return "weather"
	case MarketPrice:
		return "market_price"
	case CropAdvice:
		return "crop_advice"
	default:
		return "fallback"
	}
}

// priority fixes the evaluation order: an utterance matching several topics
// classifies as the first hit.
var priority = []Topic{Weather, MarketPrice, CropAdvice}

// triggers maps each topic to its per-language trigger substrings. Adding a
// language or a topic is a data change here, not a code change.
var triggers = map[Topic]map[lang.Language][]string{
	Weather: {
		lang.English: {"weather", "rain", "temperature", "humidity", "forecast"},
		lang.Hindi:   {"मौसम", "बारिश", "तापमान"},
		lang.Telugu:  {"వాతావరణం", "వర్షం"},
		lang.Urdu:    {"موسم", "بارش"},
	},
	MarketPrice: {
		lang.English: {"price", "market", "rate", "mandi"},
		lang.Hindi:   {"कीमत", "बाजार", "भाव"},
		lang.Telugu:  {"ధర", "మార్కెట్"},
		lang.Urdu:    {"قیمت", "بازار"},
	},
	CropAdvice: {
		lang.English: {"crop", "farming", "pest", "seed", "soil", "harvest"},
		lang.Hindi:   {"फसल", "खेती", "बीज"},
		lang.Telugu:  {"పంట", "వ్యవసాయ"},
		lang.Urdu:    {"فصل", "کھیتی"},
	},
}

// Classify maps an utterance to a Topic. The text is lower-cased and tested
// against every language's triggers at once: the query language and the
// response language are independent. Classify is total and deterministic;
// unmatched text yields Fallback.
func Classify(text string) Topic {
	q := strings.ToLower(text)
	for _, topic := range priority {
		for _, words := range triggers[topic] {
			for _, w := range words {
				if strings.Contains(q, w) {
					return topic
				}
			}
		}
	}
	return Fallback
}
