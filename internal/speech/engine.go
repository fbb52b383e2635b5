// Package speech provides spoken input and output for the assistant.
//
// The platform's synthesis and recognition facilities are modeled as an
// injected Engine capability. Environments without the capability get a
// no-op engine; callers observe that through the capability flags rather
// than through failures.
package speech

import "context"

// Voice describes one synthesis voice offered by the engine.
type Voice struct {
	Name   string
	Locale string
}

// SpeakRequest is one playback job for the engine.
type SpeakRequest struct {
	Text  string
	Voice Voice
	Rate  float64
}

// Engine abstracts a speech backend. Consumers use this interface instead of
// depending on a concrete synthesizer or recognizer.
type Engine interface {
	// Speak synthesizes req.Text and blocks until playback completes or
	// ctx is cancelled.
	Speak(ctx context.Context, req SpeakRequest) error

	// Capture runs one single-shot recognition session for the given
	// locale and returns the finalized transcript. An empty transcript
	// with nil error means the session ended without speech.
	Capture(ctx context.Context, locale string) (string, error)

	// Voices lists the synthesis voices available on this platform.
	Voices() []Voice

	// CanSpeak reports whether synthesis is available.
	CanSpeak() bool

	// CanCapture reports whether recognition is available.
	CanCapture() bool
}
