package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agrivaani/agrivaani/internal/lang"
)

// stubEngine is a controllable Engine for tests.
type stubEngine struct {
	voices     []Voice
	canSpeak   bool
	canCapture bool
	transcript string
	captureErr error

	mu     sync.Mutex
	spoken []SpeakRequest
	block  chan struct{} // when non-nil, Speak blocks until closed or ctx done
}

func (s *stubEngine) Speak(ctx context.Context, req SpeakRequest) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, req)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *stubEngine) Capture(ctx context.Context, locale string) (string, error) {
	return s.transcript, s.captureErr
}

func (s *stubEngine) Voices() []Voice  { return s.voices }
func (s *stubEngine) CanSpeak() bool   { return s.canSpeak }
func (s *stubEngine) CanCapture() bool { return s.canCapture }

func indianVoices() []Voice {
	return []Voice{
		{Name: "Ravi (India)", Locale: "en-IN"},
		{Name: "Lekha", Locale: "hi-IN"},
		{Name: "Swara (India)", Locale: "hi-IN"},
		{Name: "Chitra (India)", Locale: "te-IN"},
		{Name: "Standard English", Locale: "en-US"},
	}
}

func TestSelectVoice(t *testing.T) {
	voices := indianVoices()

	tests := []struct {
		name string
		lang lang.Language
		want string
	}{
		// Tier 1: exact locale + India-flavored name.
		{"hindi exact india variant", lang.Hindi, "Swara (India)"},
		{"telugu exact india variant", lang.Telugu, "Chitra (India)"},
		// Tier 1 for English matches the en-IN voice.
		{"english india", lang.English, "Ravi (India)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectVoice(voices, tt.lang); got.Name != tt.want {
				t.Errorf("SelectVoice = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestSelectVoicePrimarySubtagFallback(t *testing.T) {
	voices := []Voice{
		{Name: "Generic Hindi", Locale: "hi"},
		{Name: "Ravi (India)", Locale: "en-IN"},
	}
	// No exact hi-IN voice: tier 2 matches the bare "hi" voice.
	if got := SelectVoice(voices, lang.Hindi); got.Name != "Generic Hindi" {
		t.Errorf("SelectVoice = %q, want Generic Hindi", got.Name)
	}
}

func TestSelectVoiceEnglishIndiaFallback(t *testing.T) {
	voices := []Voice{
		{Name: "Ravi (India)", Locale: "en-IN"},
		{Name: "Standard English", Locale: "en-US"},
	}
	// No Urdu voice at all: tier 3 falls back to English-India.
	if got := SelectVoice(voices, lang.Urdu); got.Name != "Ravi (India)" {
		t.Errorf("SelectVoice = %q, want Ravi (India)", got.Name)
	}
}

func TestSelectVoiceNoneAvailable(t *testing.T) {
	if got := SelectVoice(nil, lang.Telugu); got != (Voice{}) {
		t.Errorf("SelectVoice with no voices = %+v, want zero Voice", got)
	}
}

func TestSpeakUsesFixedRate(t *testing.T) {
	engine := &stubEngine{canSpeak: true, voices: indianVoices()}
	a := NewAdapter(engine)

	a.Speak("hello", lang.English)
	waitFor(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.spoken) == 1
	})

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.spoken[0].Rate != 0.8 {
		t.Errorf("Rate = %v, want 0.8", engine.spoken[0].Rate)
	}
}

// TestStopSpeakingClearsFlag covers the contract that the speaking flag is
// false once StopSpeaking returns, even mid-playback.
func TestStopSpeakingClearsFlag(t *testing.T) {
	engine := &stubEngine{canSpeak: true, block: make(chan struct{})}
	a := NewAdapter(engine)

	a.Speak("test", lang.Telugu)
	waitFor(t, func() bool { return a.Speaking() })

	a.StopSpeaking()
	if a.Speaking() {
		t.Error("Speaking() true after StopSpeaking returned")
	}

	// Idempotent.
	a.StopSpeaking()
}

func TestSpeakNonPreemptive(t *testing.T) {
	block := make(chan struct{})
	engine := &stubEngine{canSpeak: true, block: block}
	a := NewAdapter(engine)

	a.Speak("first", lang.English)
	a.Speak("second", lang.English)

	waitFor(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.spoken) == 2
	})
	if !a.Speaking() {
		t.Error("Speaking() false while two playbacks in flight")
	}

	close(block)
	waitFor(t, func() bool { return !a.Speaking() })
}

func TestSpeakWithoutCapabilityIsNoop(t *testing.T) {
	a := NewAdapter(NoopEngine{})
	a.Speak("test", lang.Hindi)
	if a.Speaking() {
		t.Error("no-op engine should never report speaking")
	}
}

func TestStartCaptureSingleShot(t *testing.T) {
	engine := &stubEngine{canCapture: true, transcript: "what's the weather"}
	a := NewAdapter(engine)

	ch, ok := a.StartCapture(context.Background(), lang.English)
	if !ok {
		t.Fatal("StartCapture refused")
	}

	got, open := <-ch
	if !open {
		t.Fatal("channel closed before delivering transcript")
	}
	if got != "what's the weather" {
		t.Errorf("transcript = %q", got)
	}

	// Ended signal: channel closes after the result.
	if _, open := <-ch; open {
		t.Error("channel not closed after single-shot result")
	}
	waitFor(t, func() bool { return !a.Listening() })
}

func TestStartCaptureWhileListening(t *testing.T) {
	engine := &stubEngine{canCapture: true}
	a := NewAdapter(engine)

	a.mu.Lock()
	a.listening = true
	a.mu.Unlock()

	if _, ok := a.StartCapture(context.Background(), lang.English); ok {
		t.Error("StartCapture while listening should be a no-op")
	}
}

func TestStartCaptureWithoutCapability(t *testing.T) {
	a := NewAdapter(NoopEngine{})
	if _, ok := a.StartCapture(context.Background(), lang.English); ok {
		t.Error("StartCapture without recognition support should refuse")
	}
}

func TestCaptureNoSpeechClosesWithoutResult(t *testing.T) {
	engine := &stubEngine{canCapture: true, transcript: ""}
	a := NewAdapter(engine)

	ch, ok := a.StartCapture(context.Background(), lang.Hindi)
	if !ok {
		t.Fatal("StartCapture refused")
	}
	if _, open := <-ch; open {
		t.Error("expected closed channel with no transcript")
	}
}

func TestDetectWithoutCommands(t *testing.T) {
	engine := Detect(DetectConfig{})
	if engine.CanSpeak() || engine.CanCapture() {
		t.Error("empty config should detect no capabilities")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
