package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrivaani/agrivaani/internal/config"
	"github.com/agrivaani/agrivaani/internal/lang"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a question",
	Long: `Ask the assistant a question in any supported language.

Examples:
  agrivaani ask "What is the weather today?"
  agrivaani ask --language hindi "मौसम कैसा है?"
  agrivaani ask --language telugu --speak "వాతావరణం ఎలా ఉంది?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		language, _ := cmd.Flags().GetString("language")
		speak, _ := cmd.Flags().GetBool("speak")

		if !cmd.Flags().Changed("language") {
			if cfg, err := config.Load(); err == nil {
				language = cfg.Assistant.Language
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		resp, err := client.post(ctx, "/v1/sessions", map[string]string{"language": language})
		if err != nil {
			return err
		}
		var created struct {
			SessionID string `json:"session_id"`
			Welcome   *struct {
				Text string `json:"text"`
			} `json:"welcome"`
		}
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}
		if created.Welcome != nil {
			fmt.Println(colorize(colorCyan, created.Welcome.Text))
		}

		resp, err = client.post(ctx, "/v1/sessions/"+created.SessionID+"/messages", map[string]string{"text": question})
		if err != nil {
			return err
		}
		var reply struct {
			AssistantTurn struct {
				Text string `json:"text"`
			} `json:"assistant_turn"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		fmt.Println(reply.AssistantTurn.Text)

		if speak {
			sayResp, err := client.post(ctx, "/v1/speech/say", map[string]string{
				"text":     reply.AssistantTurn.Text,
				"language": language,
			})
			if err != nil {
				return err
			}
			sayResp.Body.Close()
		}
		return nil
	},
}

func init() {
	langNames := make([]string, 0, len(lang.All()))
	for _, l := range lang.All() {
		langNames = append(langNames, string(l))
	}
	askCmd.Flags().String("language", "english", "response language ("+strings.Join(langNames, ", ")+")")
	askCmd.Flags().Bool("speak", false, "speak the reply aloud")
}

// --- listen ---

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Capture a spoken question and answer it",
	Long: `Capture one spoken question through the daemon's voice input and
answer it like a typed question.

Examples:
  agrivaani listen
  agrivaani listen --language telugu --speak`,
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		speak, _ := cmd.Flags().GetBool("speak")

		if !cmd.Flags().Changed("language") {
			if cfg, err := config.Load(); err == nil {
				language = cfg.Assistant.Language
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		resp, err := client.post(ctx, "/v1/sessions", map[string]string{"language": language})
		if err != nil {
			return err
		}
		var created struct {
			SessionID string `json:"session_id"`
			Welcome   *struct {
				Text string `json:"text"`
			} `json:"welcome"`
		}
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}
		if created.Welcome != nil {
			fmt.Println(colorize(colorCyan, created.Welcome.Text))
		}

		fmt.Fprintln(os.Stderr, "Listening...")
		resp, err = client.post(ctx, "/v1/sessions/"+created.SessionID+"/voice", nil)
		if err != nil {
			return err
		}
		var reply struct {
			Transcript    string `json:"transcript"`
			AssistantTurn struct {
				Text string `json:"text"`
			} `json:"assistant_turn"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		if reply.Transcript == "" {
			printWarning("No speech detected")
			return nil
		}
		fmt.Printf("%s %s\n", colorize(colorBold, "You said:"), reply.Transcript)
		fmt.Println(reply.AssistantTurn.Text)

		if speak {
			sayResp, err := client.post(ctx, "/v1/speech/say", map[string]string{
				"text":     reply.AssistantTurn.Text,
				"language": language,
			})
			if err != nil {
				return err
			}
			sayResp.Body.Close()
		}
		return nil
	},
}

func init() {
	listenCmd.Flags().String("language", "english", "conversation language")
	listenCmd.Flags().Bool("speak", false, "speak the reply aloud")
}

// --- say ---

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Speak text aloud through the daemon's voice output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		language, _ := cmd.Flags().GetString("language")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/speech/say", map[string]string{
			"text":     text,
			"language": language,
		})
		if err != nil {
			return err
		}
		var result struct {
			Speaking bool `json:"speaking"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if !result.Speaking {
			printWarning("No speech output available on this system")
		}
		return nil
	},
}

func init() {
	sayCmd.Flags().String("language", "english", "language of the text")
}

// --- cache ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or update the offline cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List all cached entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/cache")
		if err != nil {
			return err
		}
		var result struct {
			Entries []struct {
				Key       string          `json:"key"`
				Value     json.RawMessage `json:"value"`
				UpdatedAt string          `json:"updated_at"`
			} `json:"entries"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Entries) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}
		for _, e := range result.Entries {
			fmt.Printf("%s  (updated %s)\n", colorize(colorBold, e.Key), e.UpdatedAt)
			value := string(e.Value)
			if len(value) > 200 {
				value = value[:200] + "..."
			}
			fmt.Printf("  %s\n", value)
		}
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a single cached entry as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/cache/"+args[0])
		if err != nil {
			return err
		}
		var result struct {
			Value json.RawMessage `json:"value"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		var pretty any
		if err := json.Unmarshal(result.Value, &pretty); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pretty)
	},
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <key> <json>",
	Short: "Store a JSON value under a cache key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]

		var value json.RawMessage
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("value is not valid JSON: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/v1/cache/"+key, value)
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Stored %s", key)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheSetCmd)
}

// --- data ---

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Show weather, market price, or farming tip data",
}

func dataFeedCommand(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			resp, err := client.get(cmd.Context(), path)
			if err != nil {
				return err
			}
			var result struct {
				Source string          `json:"source"`
				Data   json.RawMessage `json:"data"`
			}
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}

			printStatus("Source", "%s", result.Source)
			var pretty any
			if err := json.Unmarshal(result.Data, &pretty); err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		},
	}
}

func init() {
	dataCmd.AddCommand(dataFeedCommand("weather", "Show the weather snapshot", "/v1/data/weather"))
	dataCmd.AddCommand(dataFeedCommand("market", "Show market prices", "/v1/data/market"))
	dataCmd.AddCommand(dataFeedCommand("tips", "Show farming tips", "/v1/data/tips"))
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
