package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yegors/airtraffic/internal/config"
	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/internal/websocket"
	"github.com/yegors/airtraffic/pkg/logger"
)

// Router builds the HTTP surface around the simulation service
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	config   *config.Config
	logger   *logger.Logger
}

// NewRouter creates a new router. episodes and wsServer may be nil.
func NewRouter(simulationService *simulation.Service, episodes EpisodeStore, cfg *config.Config, wsServer *websocket.Server, log *logger.Logger, version string) *Router {
	if wsServer != nil {
		wsServer.SetMessageHandler(NewStreamHandler(simulationService))
	}

	return &Router{
		handler:  NewHandler(simulationService, episodes, cfg, wsServer, log, version),
		wsServer: wsServer,
		config:   cfg,
		logger:   log.Named("router"),
	}
}

// Routes returns the HTTP handler
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(r.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(r.cors)

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", r.handler.Health)
		api.Get("/config", r.handler.GetConfig)

		api.Post("/reset", r.handler.Reset)
		api.Post("/step", r.handler.Step)
		api.Get("/snapshot", r.handler.GetSnapshot)
		api.Get("/observation", r.handler.GetObservation)
		api.Get("/status", r.handler.GetStatus)

		api.Route("/episodes", func(episodes chi.Router) {
			episodes.Get("/", r.handler.ListEpisodes)
			episodes.Get("/{id}", r.handler.GetEpisode)
			episodes.Get("/{id}/events", r.handler.GetEpisodeEvents)
			episodes.Get("/{id}/ticks", r.handler.GetEpisodeTicks)
		})

		if r.wsServer != nil {
			api.Get("/ws", r.wsServer.HandleConnection)
		}
	})

	if r.config.Server.StaticFilesDir != "" {
		router.Handle("/*", NewStaticFileHandler(r.config.Server.StaticFilesDir, r.logger))
	}

	return router
}

// requestLogger logs each request once it completes
func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		r.logger.Debug("HTTP request",
			logger.String("method", req.Method),
			logger.String("path", req.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("duration", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(req.Context())))
	})
}

// cors applies the configured allowed origins
func (r *Router) cors(next http.Handler) http.Handler {
	allowed := r.config.Server.CORSAllowedOrigins
	allowAll := slices.Contains(allowed, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		if origin != "" && (allowAll || slices.Contains(allowed, origin)) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
