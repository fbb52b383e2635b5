// Package farm holds the typed snapshots that live in the cache: weather,
// market prices, and farming tips. Each snapshot type carries its own
// default-value policy so composers and renderers never see a missing field.
package farm

// Default field values used whenever a cached snapshot is absent or partial.
const (
	DefaultTemperature = 28
	DefaultHumidity    = 65
	DefaultCondition   = "Partly Cloudy"
)

// ForecastDay is one entry of the short-range forecast.
type ForecastDay struct {
	Day       string `json:"day"`
	Temp      string `json:"temp"`
	Condition string `json:"condition"`
}

// WeatherSnapshot is the cached weather state for the region.
// The zero value is not useful; use DefaultWeather for fallbacks.
type WeatherSnapshot struct {
	Temperature int           `json:"temperature"`
	Humidity    int           `json:"humidity"`
	Rainfall    int           `json:"rainfall"`
	Condition   string        `json:"condition"`
	Forecast    []ForecastDay `json:"forecast,omitempty"`
}

// DefaultWeather returns the seed weather snapshot. It is what every consumer
// sees on a first offline run.
func DefaultWeather() WeatherSnapshot {
	return WeatherSnapshot{
		Temperature: DefaultTemperature,
		Humidity:    DefaultHumidity,
		Rainfall:    0,
		Condition:   DefaultCondition,
		Forecast: []ForecastDay{
			{Day: "Today", Temp: "28°C", Condition: "🌤️"},
			{Day: "Tomorrow", Temp: "30°C", Condition: "☀️"},
			{Day: "Day 3", Temp: "26°C", Condition: "🌧️"},
		},
	}
}

// Normalize fills any missing weather fields with their defaults so the
// snapshot is always fully populated.
func (w WeatherSnapshot) Normalize() WeatherSnapshot {
	if w.Temperature == 0 {
		w.Temperature = DefaultTemperature
	}
	if w.Humidity == 0 {
		w.Humidity = DefaultHumidity
	}
	if w.Condition == "" {
		w.Condition = DefaultCondition
	}
	return w
}

// Quote is a single commodity quotation.
type Quote struct {
	Price  string `json:"price"`
	Change string `json:"change"`
}

// MarketSnapshot is the cached mandi price board, keyed by commodity.
type MarketSnapshot struct {
	Cotton   Quote `json:"cotton"`
	Rice     Quote `json:"rice"`
	Turmeric Quote `json:"turmeric"`
	Chili    Quote `json:"chili"`
}

// Default commodity prices, quoted per quintal.
func DefaultMarket() MarketSnapshot {
	return MarketSnapshot{
		Cotton:   Quote{Price: "₹5,800/quintal", Change: "+2.5%"},
		Rice:     Quote{Price: "₹2,100/quintal", Change: "-1.2%"},
		Turmeric: Quote{Price: "₹8,500/quintal", Change: "+5.8%"},
		Chili:    Quote{Price: "₹12,000/quintal", Change: "+3.2%"},
	}
}

// Normalize fills missing quotes with the default board.
func (m MarketSnapshot) Normalize() MarketSnapshot {
	def := DefaultMarket()
	if m.Cotton.Price == "" {
		m.Cotton = def.Cotton
	}
	if m.Rice.Price == "" {
		m.Rice = def.Rice
	}
	if m.Turmeric.Price == "" {
		m.Turmeric = def.Turmeric
	}
	if m.Chili.Price == "" {
		m.Chili = def.Chili
	}
	return m
}

// DefaultTips returns the seed farming tips list.
func DefaultTips() []string {
	return []string{
		"Check soil moisture before watering",
		"Monitor weather for pest activity",
		"Regular inspection of crop health",
		"Proper storage techniques for harvest",
	}
}
