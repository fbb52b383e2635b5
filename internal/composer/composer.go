// Package composer turns a classified topic plus the cache's current
// snapshot into a localized assistant response. Composition never fails:
// missing cache keys and missing fields resolve to fixed defaults, and an
// unrecognized language selects the English template.
package composer

import (
	"encoding/json"
	"fmt"

	"github.com/agrivaani/agrivaani/internal/farm"
	"github.com/agrivaani/agrivaani/internal/intent"
	"github.com/agrivaani/agrivaani/internal/lang"
	"github.com/agrivaani/agrivaani/internal/storage"
)

// Cache is the read-side of the cache store the composer consumes.
type Cache interface {
	Get(key string) (json.RawMessage, bool)
}

// Compose renders the response for topic in the given language from the
// cache's current state. The result is always a single non-empty string.
func Compose(topic intent.Topic, l lang.Language, cache Cache) string {
	switch topic {
	case intent.Weather:
		return weatherResponse(l, cachedWeather(cache))
	case intent.MarketPrice:
		return marketResponse(l, cachedMarket(cache))
	case intent.CropAdvice:
		return cropAdvice[normalize(l)]
	default:
		return fallbackHelp[normalize(l)]
	}
}

// Welcome returns the assistant's greeting for a new session.
func Welcome(l lang.Language) string {
	return welcome[normalize(l)]
}

func normalize(l lang.Language) lang.Language {
	switch l {
	case lang.Hindi, lang.Telugu, lang.Urdu:
		return l
	default:
		return lang.English
	}
}

func cachedWeather(cache Cache) farm.WeatherSnapshot {
	raw, ok := cache.Get(storage.KeyWeather)
	if !ok {
		return farm.WeatherSnapshot{}
	}
	var snap farm.WeatherSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return farm.WeatherSnapshot{}
	}
	return snap
}

func cachedMarket(cache Cache) farm.MarketSnapshot {
	raw, ok := cache.Get(storage.KeyMarketPrices)
	if !ok {
		return farm.MarketSnapshot{}
	}
	var snap farm.MarketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return farm.MarketSnapshot{}
	}
	return snap
}

func weatherResponse(l lang.Language, w farm.WeatherSnapshot) string {
	temp := w.Temperature
	if temp == 0 {
		temp = farm.DefaultTemperature
	}
	humidity := w.Humidity
	if humidity == 0 {
		humidity = farm.DefaultHumidity
	}
	condition := w.Condition
	if condition == "" {
		condition = conditionDefault[normalize(l)]
	}

	switch normalize(l) {
	case lang.Hindi:
		return fmt.Sprintf("आज हैदराबाद में मौसम: %d°C, %d%% नमी। %s की स्थिति है।", temp, humidity, condition)
	case lang.Telugu:
		return fmt.Sprintf("నేడు హైదరాబాద్‌లో వాతావరణం: %d°C, %d%% తేమ। %s స్థితి.", temp, humidity, condition)
	case lang.Urdu:
		return fmt.Sprintf("آج حیدرآباد میں موسم: %d°C، %d%% نمی۔ %s حالات ہیں۔", temp, humidity, condition)
	default:
		return fmt.Sprintf("Today's weather in Hyderabad: %d°C, %d%% humidity. %s conditions.", temp, humidity, condition)
	}
}

func marketResponse(l lang.Language, m farm.MarketSnapshot) string {
	nl := normalize(l)
	cotton := quoteOr(m.Cotton, cottonDefault[nl])
	rice := quoteOr(m.Rice, riceDefault[nl])
	turmeric := quoteOr(m.Turmeric, turmericDefault[nl])

	switch nl {
	case lang.Hindi:
		return fmt.Sprintf("आज के बाजार भाव: कपास %s, चावल %s, हल्दी %s", cotton, rice, turmeric)
	case lang.Telugu:
		return fmt.Sprintf("నేటి మార్కెట్ ధరలు: పత్తి %s, వరి %s, పసుపు %s", cotton, rice, turmeric)
	case lang.Urdu:
		return fmt.Sprintf("آج کے بازاری ریٹ: کپاس %s, چاول %s, ہلدی %s", cotton, rice, turmeric)
	default:
		return fmt.Sprintf("Today's market prices: Cotton %s, Rice %s, Turmeric %s", cotton, rice, turmeric)
	}
}

func quoteOr(q farm.Quote, def string) string {
	if q.Price == "" {
		return def
	}
	return q.Price
}
