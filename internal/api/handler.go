// Package api implements the daemon's loopback HTTP surface. The dashboard
// tabs and the assistant UI shell are its clients; everything they can do
// goes through here.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agrivaani/agrivaani/internal/connectivity"
	"github.com/agrivaani/agrivaani/internal/farm"
	"github.com/agrivaani/agrivaani/internal/lang"
	"github.com/agrivaani/agrivaani/internal/session"
	"github.com/agrivaani/agrivaani/internal/speech"
	"github.com/agrivaani/agrivaani/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds everything the HTTP layer serves.
type Deps struct {
	Store    *storage.Store
	Monitor  *connectivity.Monitor
	Sessions *session.Manager
	Speech   *speech.Adapter
}

// NewHandler returns the daemon's HTTP handler.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/cache", handleCacheList(deps.Store))
		r.Get("/cache/{key}", handleCacheGet(deps.Store))
		r.Put("/cache/{key}", handleCachePut(deps.Store))

		r.Get("/connectivity", handleConnectivityGet(deps.Monitor))
		r.Post("/connectivity/events", handleConnectivityEvent(deps.Monitor))
		r.Post("/connectivity/offline-mode", handleEnableOfflineMode(deps.Monitor))

		r.Post("/sessions", handleCreateSession(deps.Sessions))
		r.Get("/sessions/{id}", handleGetSession(deps.Sessions))
		r.Post("/sessions/{id}/messages", handleSendMessage(deps.Sessions))
		r.Post("/sessions/{id}/voice", handleVoiceMessage(deps))

		r.Get("/data/weather", handleWeatherData(deps))
		r.Get("/data/market", handleMarketData(deps))
		r.Get("/data/tips", handleTipsData(deps))

		r.Get("/speech", handleSpeechState(deps.Speech))
		r.Post("/speech/say", handleSpeechSay(deps.Speech))
		r.Post("/speech/stop", handleSpeechStop(deps.Speech))

		r.Get("/status", handleStatus(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// --- cache ---

func handleCacheList(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.Entries()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "storage_error", "listing cache: %v", err)
			return
		}

		type entry struct {
			Key       string          `json:"key"`
			Value     json.RawMessage `json:"value"`
			UpdatedAt time.Time       `json:"updated_at"`
		}
		out := make([]entry, 0, len(entries))
		for _, e := range entries {
			out = append(out, entry{Key: e.Key, Value: json.RawMessage(e.Value), UpdatedAt: e.UpdatedAt})
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": out})
	}
}

func handleCacheGet(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		value, ok := store.Get(key)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no cached value for %q", key)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": value})
	}
}

func handleCachePut(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		key := chi.URLParam(r, "key")
		var value json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid JSON body: %v", err)
			return
		}

		if err := store.Put(key, value); err != nil {
			// Persist failures are the one write error callers must be
			// able to tell apart.
			if errors.Is(err, storage.ErrPersist) {
				httpError(w, http.StatusInsufficientStorage, "persistence_error", "%v", err)
				return
			}
			httpError(w, http.StatusInternalServerError, "storage_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "status": "stored"})
	}
}

// --- connectivity ---

func handleConnectivityGet(m *connectivity.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{
			"online":               m.IsOnline(),
			"offline_mode_enabled": m.OfflineModeEnabled(),
		})
	}
}

func handleConnectivityEvent(m *connectivity.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Online *bool `json:"online"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Online == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "body must be {\"online\": bool}")
			return
		}
		m.SetOnline(*req.Online)
		writeJSON(w, http.StatusOK, map[string]bool{"online": m.IsOnline()})
	}
}

func handleEnableOfflineMode(m *connectivity.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.EnableOfflineMode()
		writeJSON(w, http.StatusOK, map[string]bool{"offline_mode_enabled": true})
	}
}

// --- sessions ---

type turnResponse struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsAssistant bool      `json:"is_assistant"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTurnResponse(t session.Turn) turnResponse {
	return turnResponse{ID: t.ID, Text: t.Text, IsAssistant: t.IsAssistant, CreatedAt: t.CreatedAt}
}

func toTurnsResponse(turns []session.Turn) []turnResponse {
	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, toTurnResponse(t))
	}
	return out
}

func handleCreateSession(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid JSON body: %v", err)
			return
		}

		s, err := mgr.Create(lang.Parse(req.Language))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "session_error", "%v", err)
			return
		}

		turns := s.Turns()
		var welcome *turnResponse
		if len(turns) > 0 && turns[0].IsAssistant {
			t := toTurnResponse(turns[0])
			welcome = &t
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"session_id": s.ID(),
			"language":   s.Language(),
			"welcome":    welcome,
		})
	}
}

func handleGetSession(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": s.ID(),
			"language":   s.Language(),
			"turns":      toTurnsResponse(s.Turns()),
		})
	}
}

func handleSendMessage(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Get(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}

		user, assistant := s.SubmitWait(req.Text)
		writeJSON(w, http.StatusOK, map[string]any{
			"user_turn":      toTurnResponse(user),
			"assistant_turn": toTurnResponse(assistant),
		})
	}
}

func handleVoiceMessage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}

		// One single-shot capture in the session's language; the transcript
		// is submitted like a typed utterance.
		results, ok := deps.Speech.StartCapture(r.Context(), s.Language())
		if !ok {
			httpError(w, http.StatusConflict, "speech_error", "voice capture unavailable or already listening")
			return
		}

		var transcript string
		for t := range results {
			transcript = t
		}
		if transcript == "" {
			writeJSON(w, http.StatusOK, map[string]any{"transcript": ""})
			return
		}

		user, assistant := s.SubmitWait(transcript)
		writeJSON(w, http.StatusOK, map[string]any{
			"transcript":     transcript,
			"user_turn":      toTurnResponse(user),
			"assistant_turn": toTurnResponse(assistant),
		})
	}
}

// --- tab data feeds ---
//
// When online, these simulate the upstream fetch and write the result
// through to the cache so it is there after connectivity drops. Offline,
// they serve the cached snapshot with its per-field defaults.

func handleWeatherData(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, deps, storage.KeyWeather, func() any { return farm.FetchWeather() }, func() any { return deps.Store.Weather() })
	}
}

func handleMarketData(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, deps, storage.KeyMarketPrices, func() any { return farm.FetchMarketPrices() }, func() any { return deps.Store.MarketPrices() })
	}
}

func handleTipsData(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, deps, storage.KeyFarmingTips, func() any { return farm.FetchTips() }, func() any { return deps.Store.FarmingTips() })
	}
}

func writeSnapshot(w http.ResponseWriter, deps Deps, key string, fetch func() any, cached func() any) {
	if deps.Monitor.IsOnline() {
		fresh := fetch()
		if err := deps.Store.Put(key, fresh); err != nil {
			httpError(w, http.StatusInsufficientStorage, "persistence_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"source": "live", "data": fresh})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": "cache", "data": cached()})
}

// --- speech ---

func handleSpeechState(adapter *speech.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{
			"can_speak":   adapter.CanSpeak(),
			"can_capture": adapter.CanCapture(),
			"speaking":    adapter.Speaking(),
			"listening":   adapter.Listening(),
		})
	}
}

func handleSpeechSay(adapter *speech.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}
		adapter.Speak(req.Text, lang.Parse(req.Language))
		writeJSON(w, http.StatusOK, map[string]bool{"speaking": adapter.Speaking()})
	}
}

func handleSpeechStop(adapter *speech.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adapter.StopSpeaking()
		writeJSON(w, http.StatusOK, map[string]bool{"speaking": adapter.Speaking()})
	}
}

// --- status ---

func handleStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := deps.Store.Entries()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "storage_error", "%v", err)
			return
		}
		turnCount, err := deps.Store.TurnCount()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "storage_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"online":               deps.Monitor.IsOnline(),
			"offline_mode_enabled": deps.Monitor.OfflineModeEnabled(),
			"cache_entries":        len(entries),
			"turns":                turnCount,
			"live_sessions":        deps.Sessions.Count(),
			"can_speak":            deps.Speech.CanSpeak(),
			"can_capture":          deps.Speech.CanCapture(),
		})
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
