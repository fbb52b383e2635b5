package speech

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agrivaani/agrivaani/internal/lang"
)

// playbackRate slows synthesis below the platform default for
// intelligibility. Pitch is left alone.
const playbackRate = 0.8

// Adapter coordinates capture and playback on top of an Engine. Capture is
// single-shot and exclusive; playback is non-preemptive: a new Speak does not
// cancel a running one, only StopSpeaking does.
type Adapter struct {
	engine Engine

	mu        sync.Mutex
	listening bool
	active    int // running playback jobs
	gen       int // bumped by StopSpeaking to orphan cancelled jobs
	cancels   map[int][]context.CancelFunc
}

// NewAdapter creates an Adapter over the given engine.
func NewAdapter(engine Engine) *Adapter {
	return &Adapter{
		engine:  engine,
		cancels: map[int][]context.CancelFunc{},
	}
}

// CanSpeak reports whether spoken output is available.
func (a *Adapter) CanSpeak() bool { return a.engine.CanSpeak() }

// CanCapture reports whether spoken input is available.
func (a *Adapter) CanCapture() bool { return a.engine.CanCapture() }

// Speaking reports whether any playback is in flight.
func (a *Adapter) Speaking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active > 0
}

// Listening reports whether a capture session is active. Callers disable
// their capture control while this is true.
func (a *Adapter) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Speak starts playback of text in the voice selected for l and returns
// immediately. Without synthesis support it is a no-op. The speaking flag
// stays true until every started playback completes or is cancelled.
func (a *Adapter) Speak(text string, l lang.Language) {
	if !a.engine.CanSpeak() {
		return
	}

	voice := SelectVoice(a.engine.Voices(), l)
	ctx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	a.active++
	gen := a.gen
	a.cancels[gen] = append(a.cancels[gen], cancel)
	a.mu.Unlock()

	go func() {
		err := a.engine.Speak(ctx, SpeakRequest{Text: text, Voice: voice, Rate: playbackRate})
		if err != nil && ctx.Err() == nil {
			slog.Warn("playback failed", "error", err)
		}

		a.mu.Lock()
		// If StopSpeaking ran since this job started, it already
		// accounted for it.
		if gen == a.gen {
			a.active--
		}
		a.mu.Unlock()
	}()
}

// StopSpeaking cancels all in-flight playback. It is idempotent and the
// speaking flag is false by the time it returns.
func (a *Adapter) StopSpeaking() {
	a.mu.Lock()
	cancels := a.cancels[a.gen]
	a.cancels = map[int][]context.CancelFunc{}
	a.gen++
	a.active = 0
	a.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// StartCapture begins one single-shot recognition session in the locale
// derived from l. The returned channel yields at most one finalized
// transcript and is then closed; closure is the "no longer listening"
// signal. Starting while a session is active, or without recognition
// support, returns ok=false and no session is started.
func (a *Adapter) StartCapture(ctx context.Context, l lang.Language) (<-chan string, bool) {
	if !a.engine.CanCapture() {
		return nil, false
	}

	a.mu.Lock()
	if a.listening {
		a.mu.Unlock()
		return nil, false
	}
	a.listening = true
	a.mu.Unlock()

	out := make(chan string, 1)
	go func() {
		transcript, err := a.engine.Capture(ctx, l.LocaleString())
		if err != nil {
			slog.Warn("capture failed", "error", err)
		}

		// Result, if any, is delivered before the ended signal.
		if transcript != "" {
			out <- transcript
		}

		a.mu.Lock()
		a.listening = false
		a.mu.Unlock()
		close(out)
	}()
	return out, true
}
