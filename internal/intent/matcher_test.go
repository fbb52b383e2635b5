package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Topic
	}{
		{"english weather", "What's the weather today?", Weather},
		{"hindi weather", "आज मौसम कैसा है", Weather},
		{"telugu weather", "వాతావరణం ఎలా ఉంది", Weather},
		{"urdu weather", "آج موسم کیسا ہے", Weather},
		{"english price", "cotton price in the market", MarketPrice},
		{"hindi price", "कपास की कीमत क्या है", MarketPrice},
		{"telugu price", "పత్తి ధర ఎంత", MarketPrice},
		{"urdu price", "کپاس کی قیمت کیا ہے", MarketPrice},
		{"english crop", "how is my crop doing", CropAdvice},
		{"farming keyword", "any farming advice?", CropAdvice},
		{"hindi crop", "फसल की देखभाल कैसे करें", CropAdvice},
		{"mixed language", "please tell me about मौसम", Weather},
		{"uppercase", "WEATHER UPDATE PLEASE", Weather},
		{"no match", "hello there", Fallback},
		{"empty", "", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestClassifyPriority verifies the fixed evaluation order: weather wins over
// market price, which wins over crop advice.
func TestClassifyPriority(t *testing.T) {
	if got := Classify("weather effect on cotton price"); got != Weather {
		t.Errorf("weather+price = %v, want Weather", got)
	}
	if got := Classify("market price for this crop"); got != MarketPrice {
		t.Errorf("price+crop = %v, want MarketPrice", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	const q = "बाजार में धान का भाव"
	first := Classify(q)
	for i := 0; i < 100; i++ {
		if got := Classify(q); got != first {
			t.Fatalf("Classify not deterministic: %v then %v", first, got)
		}
	}
}

func TestTopicString(t *testing.T) {
	pairs := map[Topic]string{
		Weather:     "weather",
		MarketPrice: "market_price",
		CropAdvice:  "crop_advice",
		Fallback:    "fallback",
	}
	for topic, want := range pairs {
		if got := topic.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", topic, got, want)
		}
	}
}
