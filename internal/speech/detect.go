package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DetectConfig holds parameters for speech backend detection.
type DetectConfig struct {
	// SpeakCommand is the synthesis binary, e.g. "espeak-ng". Empty
	// disables playback.
	SpeakCommand string
	// CaptureCommand is the recognition binary. Empty disables capture.
	CaptureCommand string
}

// Detect probes the configured speech commands once and returns an engine
// matching what the platform offers. When neither command resolves, the
// returned engine is a no-op and both capability flags are false.
func Detect(cfg DetectConfig) Engine {
	e := &execEngine{}
	if cfg.SpeakCommand != "" {
		if path, err := exec.LookPath(cfg.SpeakCommand); err == nil {
			e.speakPath = path
		}
	}
	if cfg.CaptureCommand != "" {
		if path, err := exec.LookPath(cfg.CaptureCommand); err == nil {
			e.capturePath = path
		}
	}
	if e.speakPath == "" && e.capturePath == "" {
		return NoopEngine{}
	}
	return e
}

// execEngine shells out to platform speech binaries. Synthesis binaries in
// the espeak family accept -v <voice> -s <rate-scaled-wpm> and text on argv;
// recognition binaries are expected to print one transcript line.
type execEngine struct {
	speakPath   string
	capturePath string
}

func (e *execEngine) Speak(ctx context.Context, req SpeakRequest) error {
	if e.speakPath == "" {
		return nil
	}
	args := []string{}
	if req.Voice.Locale != "" {
		args = append(args, "-v", strings.ToLower(req.Voice.Locale))
	}
	if req.Rate > 0 {
		// espeak's default is 175 words per minute.
		args = append(args, "-s", fmt.Sprintf("%d", int(175*req.Rate)))
	}
	args = append(args, req.Text)

	cmd := exec.CommandContext(ctx, e.speakPath, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running synthesizer: %w", err)
	}
	return nil
}

func (e *execEngine) Capture(ctx context.Context, locale string) (string, error) {
	if e.capturePath == "" {
		return "", nil
	}
	cmd := exec.CommandContext(ctx, e.capturePath, "--language", locale, "--single-shot")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("running recognizer: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *execEngine) Voices() []Voice {
	if e.speakPath == "" {
		return nil
	}
	// espeak-family binaries ship one voice per locale.
	return []Voice{
		{Name: "English (India)", Locale: "en-IN"},
		{Name: "Hindi (India)", Locale: "hi-IN"},
		{Name: "Telugu (India)", Locale: "te-IN"},
		{Name: "Urdu (Pakistan)", Locale: "ur-PK"},
	}
}

func (e *execEngine) CanSpeak() bool   { return e.speakPath != "" }
func (e *execEngine) CanCapture() bool { return e.capturePath != "" }

// NoopEngine is the engine used when the platform has no speech support.
// All methods succeed without doing anything.
type NoopEngine struct{}

func (NoopEngine) Speak(ctx context.Context, req SpeakRequest) error { return nil }

func (NoopEngine) Capture(ctx context.Context, locale string) (string, error) {
	return "", nil
}

func (NoopEngine) Voices() []Voice  { return nil }
func (NoopEngine) CanSpeak() bool   { return false }
func (NoopEngine) CanCapture() bool { return false }
