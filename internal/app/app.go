// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/markdave123-py/Chatlens/internal/config"
	"github.com/markdave123-py/Chatlens/internal/core/llm"
	objectclient "github.com/markdave123-py/Chatlens/internal/core/object-client"
	"github.com/markdave123-py/Chatlens/internal/core/ocr"
	"github.com/markdave123-py/Chatlens/internal/core/store"
	"github.com/markdave123-py/Chatlens/internal/services"
)

type App struct {
	Store       *store.Store
	ChatService *services.ChatService
	Server      *Server

	logger      *slog.Logger
	modelCloser io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, closer, err := llm.NewProvider(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the model backend, %w", err)
	}
	logger.Info("model backend ready", "backend", cfg.ModelBackend)

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithModelTimeout(cfg.ModelTimeout),
		services.WithOCRTimeout(cfg.OCRTimeout),
	}

	if cfg.ArchiveEnabled() {
		objClient, err := objectclient.NewS3Client(appCtx, cfg, logger)
		if err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("couldn't initialize the image archive, %w", err)
		}
		opts = append(opts, services.WithArchive(objClient))
	}

	usePreprocessing := true
	extractor := ocr.NewDocconvExtractor(usePreprocessing, logger)
	checkOCR(appCtx, extractor, logger)

	st := store.New()
	chatService := services.NewChatService(st, provider, extractor, opts...)
	chatService.NewChat()

	server := NewServer(cfg, chatService, logger)

	return &App{
		Store:       st,
		ChatService: chatService,
		Server:      server,
		logger:      logger,
		modelCloser: closer,
	}, nil
}

// checkOCR warns once at startup when image uploads cannot be read.
// The server still starts; uploads then carry the OCR error text.
func checkOCR(ctx context.Context, ex ocr.Extractor, logger *slog.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := ocr.SelfCheck(ctx, ex); err != nil {
		logger.Warn("ocr unavailable, uploads will report ocr errors", "error", err, "hint", "build with -tags ocr (make build)")
		return false
	}
	return true
}

func (a *App) Close() {
	if a.modelCloser != nil {
		if err := a.modelCloser.Close(); err != nil {
			a.logger.Warn("failed to close model backend", "error", err)
		}
	}
}
