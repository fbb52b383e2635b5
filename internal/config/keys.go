package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "AGRIVAANI_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.mcp_port", typ: kInt, env: "AGRIVAANI_SERVER_MCP_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPPort = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.MCPPort },
	},
	{
		key: "server.api_token", typ: kString, env: "AGRIVAANI_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "storage.data_dir", typ: kString, env: "AGRIVAANI_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "assistant.language", typ: kString, env: "AGRIVAANI_ASSISTANT_LANGUAGE",
		apply:   func(cfg *Config, v any) { cfg.Assistant.Language = v.(string) },
		extract: func(cfg Config) any { return cfg.Assistant.Language },
	},
	{
		key: "assistant.response_delay_ms", typ: kInt, env: "AGRIVAANI_ASSISTANT_RESPONSE_DELAY_MS",
		apply:   func(cfg *Config, v any) { cfg.Assistant.ResponseDelayMS = v.(int) },
		extract: func(cfg Config) any { return cfg.Assistant.ResponseDelayMS },
	},
	{
		key: "speech.speak_command", typ: kString, env: "AGRIVAANI_SPEECH_SPEAK_COMMAND",
		apply:   func(cfg *Config, v any) { cfg.Speech.SpeakCommand = v.(string) },
		extract: func(cfg Config) any { return cfg.Speech.SpeakCommand },
	},
	{
		key: "speech.capture_command", typ: kString, env: "AGRIVAANI_SPEECH_CAPTURE_COMMAND",
		apply:   func(cfg *Config, v any) { cfg.Speech.CaptureCommand = v.(string) },
		extract: func(cfg Config) any { return cfg.Speech.CaptureCommand },
	},
	{
		key: "log.level", typ: kString, env: "AGRIVAANI_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
