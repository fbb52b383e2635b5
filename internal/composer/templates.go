package composer

import "github.com/agrivaani/agrivaani/internal/lang"

// Static localized text. Each table carries exactly one entry per supported
// language; unknown tags are normalized to English before lookup.

var welcome = map[lang.Language]string{
	lang.English: "Hello! I'm your Agricultural Assistant. I can help you with farming, crops, weather, and market prices in Hyderabad, Telangana.",
	lang.Hindi:   "नमस्ते! मैं आपका कृषि सहायक हूं। मैं खेती, फसल, मौसम और बाजार की कीमतों के बारे में आपकी मदद कर सकता हूं।",
	lang.Telugu:  "నమస్కారం! నేను మీ వ్యవసాయ సహాయకుడిని. వ్యవసాయం, పంటలు, వాతావరణం మరియు మార్కెట్ ధరల గురించి మీకు సహాయం చేయగలను.",
	lang.Urdu:    "السلام علیکم! میں آپ کا زرعی معاون ہوں۔ میں کھیتی باڑی، فصلوں، موسم اور بازاری قیمتوں کے بارے میں آپ کی مدد کر سکتا ہوں۔",
}

var cropAdvice = map[lang.Language]string{
	lang.English: "Cotton, rice, and turmeric crops are doing well in Telangana this season. Maintain regular watering and pest control.",
	lang.Hindi:   "तेलंगाना में इस समय कपास, चावल, और हल्दी की फसल अच्छी है। नियमित पानी और कीट नियंत्रण का ध्यान रखें।",
	lang.Telugu:  "తెలంగాణలో ఈ సమయంలో పత్తి, వరి మరియు పసుపు పంటలు బాగా ఉన్నాయి. క్రమం తప్పకుండా నీరు మరియు కీటక నియంత్రణ జాగ్రత్తలు తీసుకోండి.",
	lang.Urdu:    "تلنگانہ میں اس وقت کپاس، چاول اور ہلدی کی فصل اچھی ہے۔ باقاعدگی سے پانی اور کیڑوں کے کنٹرول کا خیال رکھیں۔",
}

var fallbackHelp = map[lang.Language]string{
	lang.English: "I can help you with any farming-related questions. Ask me about weather, crops, market prices, or farming techniques in Hyderabad, Telangana.",
	lang.Hindi:   "मैं आपकी खेती से जुड़ी किसी भी समस्या में मदद कर सकता हूं। मौसम, फसल, बाजार की कीमतों के बारे में पूछें।",
	lang.Telugu:  "వ్యవసాయ సంబంధిత ఏ విషయంలోనైనా మీకు సహాయం చేయగలను. వాతావరణం, పంటలు, మార్కెట్ ధరల గురించి అడగండి.",
	lang.Urdu:    "میں آپ کے کھیتی باڑی کے کسی بھی مسئلے میں مدد کر سکتا ہوں۔ موسم، فصلوں، مارکیٹ کی قیمتوں کے بارے میں پوچھیں۔",
}

// conditionDefault is interpolated only when the cached weather has no
// condition text at all.
var conditionDefault = map[lang.Language]string{
	lang.English: "Partly cloudy",
	lang.Hindi:   "आंशिक रूप से बादल",
	lang.Telugu:  "పాక్షిక మేఘావృతం",
	lang.Urdu:    "جزوی طور پر ابر آلود",
}

// Per-language quote defaults, used only when the cache has no quote for the
// commodity. The unit suffix is localized; prices match the seed board.
var cottonDefault = map[lang.Language]string{
	lang.English: "₹5,800/quintal",
	lang.Hindi:   "₹5,800/क्विंटल",
	lang.Telugu:  "₹5,800/క్వింటల్",
	lang.Urdu:    "₹5,800/کوئنٹل",
}

var riceDefault = map[lang.Language]string{
	lang.English: "₹2,100/quintal",
	lang.Hindi:   "₹2,100/क्विंटल",
	lang.Telugu:  "₹2,100/క్వింటల్",
	lang.Urdu:    "₹2,100/کوئنٹل",
}

var turmericDefault = map[lang.Language]string{
	lang.English: "₹8,500/quintal",
	lang.Hindi:   "₹8,500/क्विंटल",
	lang.Telugu:  "₹8,500/క్వింటల్",
	lang.Urdu:    "₹8,500/کوئنٹل",
}
