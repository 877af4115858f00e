package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/airtraffic/internal/config"
	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/internal/storage/sqlite"
	"github.com/yegors/airtraffic/internal/websocket"
	"github.com/yegors/airtraffic/pkg/logger"
)

const (
	maxRequestBytes     = 1 << 20
	defaultEpisodeLimit = 50
	maxEpisodeLimit     = 500
	defaultTickLimit    = 1000
	maxTickLimit        = 10000
)

// EpisodeStore is the read side of episode recording
type EpisodeStore interface {
	ListEpisodes(limit, offset int) ([]*sqlite.EpisodeRecord, error)
	GetEpisode(episodeID string) (*sqlite.EpisodeRecord, error)
	GetEvents(episodeID string) ([]*sqlite.EventRecord, error)
	GetTicks(episodeID string, limit, offset int) ([]*sqlite.TickRecord, error)
}

// Handler contains the API handlers
type Handler struct {
	simulationService *simulation.Service
	episodes          EpisodeStore
	config            *config.Config
	wsServer          *websocket.Server
	logger            *logger.Logger
	version           string
}

// NewHandler creates a new API handler. episodes and wsServer may be nil when
// recording or streaming is disabled.
func NewHandler(simulationService *simulation.Service, episodes EpisodeStore, cfg *config.Config, wsServer *websocket.Server, log *logger.Logger, version string) *Handler {
	return &Handler{
		simulationService: simulationService,
		episodes:          episodes,
		config:            cfg,
		wsServer:          wsServer,
		logger:            log.Named("api-handler"),
		version:           version,
	}
}

// ResetRequest is the body of POST /reset. A missing seed derives one from
// the configured seed and the episode count.
type ResetRequest struct {
	Seed *uint64 `json:"seed"`
}

// StepRequest is the body of POST /step. Commands are indexed by roster slot.
type StepRequest struct {
	Commands []simulation.Command `json:"commands"`
}

// StepResponse wraps a tick result with its observation
type StepResponse struct {
	*simulation.StepResult
	Observation []simulation.ObservationRow `json:"observation"`
}

// Reset starts a new episode
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var episode simulation.Episode
	if req.Seed != nil {
		episode = h.simulationService.Reset(*req.Seed)
	} else {
		episode = h.simulationService.ResetNext(h.config.Simulation.Seed)
	}
	h.logger.Debug("Reset via API", logger.Uint64("seed", episode.Seed))

	WriteJSON(w, http.StatusOK, map[string]any{
		"seed":        episode.Seed,
		"episode_id":  episode.ID,
		"snapshot":    episode.Snapshot,
		"observation": episode.Snapshot.Observation(),
	})
}

// Step advances the simulation one tick
func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	for i, c := range req.Commands {
		req.Commands[i] = simulation.ClampCommand(c)
	}

	result, err := h.simulationService.Step(req.Commands)
	if errors.Is(err, simulation.ErrNotReset) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("Step failed", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, StepResponse{
		StepResult:  result,
		Observation: result.Snapshot.Observation(),
	})
}

// GetSnapshot returns the current world state
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.simulationService.Snapshot()
	if errors.Is(err, simulation.ErrNotReset) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// GetObservation returns the current observation matrix
func (h *Handler) GetObservation(w http.ResponseWriter, r *http.Request) {
	obs, err := h.simulationService.Observation()
	if errors.Is(err, simulation.ErrNotReset) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"shape":       []int{len(obs), simulation.ObservationFeatures},
		"observation": obs,
	})
}

// GetStatus returns the episode status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.simulationService.Status())
}

// GetConfig returns the world configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"world":     h.simulationService.Config(),
		"recording": h.episodes != nil,
		"streaming": h.wsServer != nil,
	})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if h.wsServer != nil {
		clients = h.wsServer.ClientCount()
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"version":           h.version,
		"websocket_clients": clients,
	})
}

// ListEpisodes returns recorded episodes, newest first
func (h *Handler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	if !h.requireEpisodes(w) {
		return
	}

	limit, offset, err := parsePaging(r, defaultEpisodeLimit, maxEpisodeLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	episodes, err := h.episodes.ListEpisodes(limit, offset)
	if err != nil {
		h.logger.Error("Failed to list episodes", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if episodes == nil {
		episodes = []*sqlite.EpisodeRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"episodes": episodes,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetEpisode returns one recorded episode
func (h *Handler) GetEpisode(w http.ResponseWriter, r *http.Request) {
	if !h.requireEpisodes(w) {
		return
	}

	episode, err := h.episodes.GetEpisode(chi.URLParam(r, "id"))
	if h.writeStoreError(w, err) {
		return
	}
	WriteJSON(w, http.StatusOK, episode)
}

// GetEpisodeEvents returns the events of a recorded episode
func (h *Handler) GetEpisodeEvents(w http.ResponseWriter, r *http.Request) {
	if !h.requireEpisodes(w) {
		return
	}

	events, err := h.episodes.GetEvents(chi.URLParam(r, "id"))
	if h.writeStoreError(w, err) {
		return
	}
	if events == nil {
		events = []*sqlite.EventRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// GetEpisodeTicks returns the tick summaries of a recorded episode
func (h *Handler) GetEpisodeTicks(w http.ResponseWriter, r *http.Request) {
	if !h.requireEpisodes(w) {
		return
	}

	limit, offset, err := parsePaging(r, defaultTickLimit, maxTickLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticks, err := h.episodes.GetTicks(chi.URLParam(r, "id"), limit, offset)
	if h.writeStoreError(w, err) {
		return
	}
	if ticks == nil {
		ticks = []*sqlite.TickRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ticks": ticks})
}

func (h *Handler) requireEpisodes(w http.ResponseWriter) bool {
	if h.episodes == nil {
		http.Error(w, "Episode recording is disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// writeStoreError writes the response for a store error and reports whether one was written
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, sqlite.ErrEpisodeNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("Episode store error", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

var errBadPaging = errors.New("limit and offset must be non-negative integers")

func parsePaging(r *http.Request, defaultLimit, maxLimit int) (int, int, error) {
	limit, offset := defaultLimit, 0

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, errBadPaging
		}
		limit = min(n, maxLimit)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, errBadPaging
		}
		offset = n
	}
	return limit, offset, nil
}

// WriteJSON writes data as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
