package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agrivaani/agrivaani/internal/api"
	"github.com/agrivaani/agrivaani/internal/config"
	"github.com/agrivaani/agrivaani/internal/connectivity"
	"github.com/agrivaani/agrivaani/internal/farm"
	"github.com/agrivaani/agrivaani/internal/session"
	"github.com/agrivaani/agrivaani/internal/speech"
	"github.com/agrivaani/agrivaani/internal/storage"
)

// probeInterval is how often the daemon re-checks reachability.
const probeInterval = 30 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agrivaani daemon (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running agrivaani daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agrivaani system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "agrivaani.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// probeInternet reports whether the public network is reachable. A plain
// TCP dial to a well-known resolver is enough; the daemon never depends on
// the answer being fresh.
func probeInternet() bool {
	conn, err := net.DialTimeout("tcp", "1.1.1.1:53", 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "agrivaani version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)})))

	// Write PID file. Check if the daemon is already running via the health
	// endpoint first.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("agrivaani is already running (PID %d)", pid)
			return fmt.Errorf("daemon already running (PID %d)", pid)
		}
		printWarning("agrivaani is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("daemon already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage and seed the offline cache.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()
	if err := store.Seed(); err != nil {
		return fmt.Errorf("seeding cache: %w", err)
	}
	slog.Info("offline cache seeded", "data_dir", cfg.Storage.DataDir)

	// Connectivity monitor with a live probe.
	monitor := connectivity.NewMonitor(probeInternet)
	slog.Info("connectivity monitor started", "online", monitor.IsOnline(), "offline_mode", monitor.OfflineModeEnabled())

	// Detect voice capabilities.
	engine := speech.Detect(speech.DetectConfig{
		SpeakCommand:   cfg.Speech.SpeakCommand,
		CaptureCommand: cfg.Speech.CaptureCommand,
	})
	adapter := speech.NewAdapter(engine)
	slog.Info("speech adapter ready", "can_speak", adapter.CanSpeak(), "can_capture", adapter.CanCapture())

	// Session manager with voice output and the configured reply delay.
	sessions := session.NewManager(store, session.Options{
		Speaker:       adapter,
		ThinkingDelay: cfg.ResponseDelay(),
	})

	// Warm the cache immediately if we start online.
	if monitor.IsOnline() {
		if err := refreshCaches(ctx, store); err != nil {
			slog.Warn("initial cache refresh failed", "error", err)
		}
	}

	// Re-probe connectivity periodically and refresh caches on recovery.
	transitions := monitor.Subscribe()
	go func() {
		ticker := time.NewTicker(probeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				monitor.SetOnline(probeInternet())
			case online, ok := <-transitions:
				if !ok {
					return
				}
				slog.Info("connectivity changed", "online", online)
				if online {
					if err := refreshCaches(ctx, store); err != nil {
						slog.Warn("cache refresh failed", "error", err)
					}
				}
			}
		}
	}()

	// Build HTTP handler.
	var handler http.Handler = api.NewHandler(api.Deps{
		Store:    store,
		Monitor:  monitor,
		Sessions: sessions,
		Speech:   adapter,
	})
	if cfg.Server.APIToken != "" {
		handler = api.BearerAuth(cfg.Server.APIToken)(handler)
		slog.Info("bearer auth enabled")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{Store: store})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "agrivaani listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	adapter.StopSpeaking()

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// refreshCaches fetches all three feeds concurrently and writes them
// through to the cache.
func refreshCaches(ctx context.Context, store *storage.Store) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Put(storage.KeyWeather, farm.FetchWeather()) })
	g.Go(func() error { return store.Put(storage.KeyMarketPrices, farm.FetchMarketPrices()) })
	g.Go(func() error { return store.Put(storage.KeyFarmingTips, farm.FetchTips()) })
	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("agrivaani is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop agrivaani (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to agrivaani (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Daemon", "stopped")
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		printStatus("Daemon", "running on port %d", cfg.Server.Port)
	} else {
		printStatus("Daemon", "error (HTTP %d)", resp.StatusCode)
	}

	req, err := http.NewRequest("GET", serverURL+"/v1/status", nil)
	if err != nil {
		return err
	}
	if cfg.Server.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Server.APIToken)
	}
	statusResp, err := client.Do(req)
	if err == nil {
		var status struct {
			Online             bool `json:"online"`
			OfflineModeEnabled bool `json:"offline_mode_enabled"`
			CacheEntries       int  `json:"cache_entries"`
			Turns              int  `json:"turns"`
			LiveSessions       int  `json:"live_sessions"`
			CanSpeak           bool `json:"can_speak"`
			CanCapture         bool `json:"can_capture"`
		}
		if json.NewDecoder(statusResp.Body).Decode(&status) == nil {
			printStatus("Connectivity", "%s", onlineLabel(status.Online))
			printStatus("Offline mode", "%v", status.OfflineModeEnabled)
			printStatus("Cache entries", "%d", status.CacheEntries)
			printStatus("Stored turns", "%d", status.Turns)
			printStatus("Live sessions", "%d", status.LiveSessions)
			printStatus("Voice output", "%v", status.CanSpeak)
			printStatus("Voice input", "%v", status.CanCapture)
		}
		statusResp.Body.Close()
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
