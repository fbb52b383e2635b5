package farm

// Simulated "live" producers. There is no real upstream service; when the
// daemon is online these stand in for the API calls the dashboard would make,
// and their results are written through to the cache so they survive going
// offline.

// FetchWeather returns the current live weather reading with the full
// five-day forecast.
func FetchWeather() WeatherSnapshot {
	return WeatherSnapshot{
		Temperature: 28,
		Humidity:    65,
		Rainfall:    0,
		Condition:   "Partly Cloudy",
		Forecast: []ForecastDay{
			{Day: "Today", Temp: "28°C", Condition: "🌤️"},
			{Day: "Tomorrow", Temp: "30°C", Condition: "☀️"},
			{Day: "Day 3", Temp: "26°C", Condition: "🌧️"},
			{Day: "Day 4", Temp: "29°C", Condition: "⛅"},
			{Day: "Day 5", Temp: "31°C", Condition: "☀️"},
		},
	}
}

// FetchMarketPrices returns the current live mandi board.
func FetchMarketPrices() MarketSnapshot {
	return DefaultMarket()
}

// FetchTips returns the current advisory list.
func FetchTips() []string {
	return append(DefaultTips(),
		"Use drip irrigation during dry spells to conserve water")
}
