// Package config loads the daemon's layered configuration: built-in
// defaults, then the JSON config file at $XDG_CONFIG_HOME/agrivaani/
// config.json, then AGRIVAANI_* environment variables.
package config

import "time"

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Assistant AssistantConfig
	Speech    SpeechConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
	// APIToken guards the loopback API when non-empty. Secret: settable
	// only through the environment.
	APIToken string
}

type StorageConfig struct {
	DataDir string
}

type AssistantConfig struct {
	// Language is the default response language for new sessions.
	Language string
	// ResponseDelayMS is the simulated thinking delay before the
	// assistant's reply.
	ResponseDelayMS int
}

type SpeechConfig struct {
	// SpeakCommand is the synthesis binary probed at startup; empty
	// disables spoken output.
	SpeakCommand string
	// CaptureCommand is the recognition binary; empty disables spoken
	// input.
	CaptureCommand string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4600,
			MCPPort: 4601,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Assistant: AssistantConfig{
			Language:        "english",
			ResponseDelayMS: 1000,
		},
		Speech: SpeechConfig{
			SpeakCommand: "espeak-ng",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ResponseDelay returns the assistant delay as a duration.
func (c Config) ResponseDelay() time.Duration {
	return time.Duration(c.Assistant.ResponseDelayMS) * time.Millisecond
}

// Load reads configuration from the config file and environment.
// Environment variables (AGRIVAANI_*) override file values.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	return cfg, nil
}
