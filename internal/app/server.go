package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/Chatlens/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Chatlens/internal/api/middlewares"
	"github.com/markdave123-py/Chatlens/internal/config"
	"github.com/markdave123-py/Chatlens/internal/services"
)

// requestMargin is added to the model timeout for the per-request deadline.
const requestMargin = 30 * time.Second

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewRouter builds and wires all routes.
func NewRouter(cfg *config.Config, svc *services.ChatService, logger *slog.Logger) http.Handler {
	chatHandler := handlers.NewChatHandler(svc, logger)
	uploaderHandler := handlers.NewUploaderHandler(svc, logger, cfg.MaxUploadMB)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.ModelTimeout + cfg.OCRTimeout + requestMargin))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.JWTSecret != "" {
			api.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
		}

		api.Route("/chats", func(chats chi.Router) {
			chats.Post("/", chatHandler.CreateChat)
			chats.Get("/", chatHandler.ListChats)
			chats.Get("/current", chatHandler.CurrentChat)
			chats.Get("/{id}", chatHandler.GetChat)
			chats.Post("/{id}/select", chatHandler.SelectChat)
			chats.Patch("/{id}", chatHandler.RenameChat)
			chats.Delete("/{id}", chatHandler.DeleteChat)
		})

		api.Get("/uploader", uploaderHandler.State)
		api.Post("/uploader/toggle", uploaderHandler.Toggle)
		api.Post("/uploader/image", uploaderHandler.UploadImage)

		api.Post("/prompt", chatHandler.SubmitPrompt)
	})

	return r
}

func NewServer(cfg *config.Config, svc *services.ChatService, logger *slog.Logger) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
