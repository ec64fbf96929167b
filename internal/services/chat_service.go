package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/Chatlens/internal/core"
	objectclient "github.com/markdave123-py/Chatlens/internal/core/object-client"
	"github.com/markdave123-py/Chatlens/internal/core/ocr"
	"github.com/markdave123-py/Chatlens/internal/core/store"
	"github.com/markdave123-py/Chatlens/internal/models"
)

var ErrUploaderClosed = errors.New("image uploader is closed")

const (
	defaultModelTimeout = 120 * time.Second
	defaultOCRTimeout   = 60 * time.Second
)

// ChatService drives the chat sessions: it owns the session store, the
// uploader state and the pending OCR context of the current upload cycle.
type ChatService struct {
	store     *store.Store
	llm       core.LLMProvider
	extractor ocr.Extractor
	archive   core.ObjectClient
	logger    *slog.Logger

	modelTimeout time.Duration
	ocrTimeout   time.Duration

	mu           sync.Mutex
	uploaderOpen bool
	pending      *models.PendingImage
	// cycle numbers the upload cycle; it moves on every toggle and every finished turn.
	cycle uint64

	turnMu sync.Mutex
}

type Option func(*ChatService)

// WithArchive copies images attached to user messages to object storage.
func WithArchive(obj core.ObjectClient) Option {
	return func(s *ChatService) { s.archive = obj }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ChatService) { s.logger = logger }
}

func WithModelTimeout(d time.Duration) Option {
	return func(s *ChatService) { s.modelTimeout = d }
}

func WithOCRTimeout(d time.Duration) Option {
	return func(s *ChatService) { s.ocrTimeout = d }
}

func NewChatService(st *store.Store, llm core.LLMProvider, extractor ocr.Extractor, opts ...Option) *ChatService {
	s := &ChatService{
		store:        st,
		llm:          llm,
		extractor:    extractor,
		logger:       slog.Default(),
		modelTimeout: defaultModelTimeout,
		ocrTimeout:   defaultOCRTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploaderState is what the presentation layer shows about the upload cycle.
type UploaderState struct {
	Open       bool   `json:"open"`
	HasPending bool   `json:"has_pending"`
	Text       string `json:"text,omitempty"`
}

func (s *ChatService) Uploader() UploaderState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := UploaderState{Open: s.uploaderOpen}
	if s.pending != nil {
		st.HasPending = true
		st.Text = s.pending.Text
	}
	return st
}

// ToggleUploader flips the uploader visibility. Closing it discards any pending OCR context.
func (s *ChatService) ToggleUploader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploaderOpen = !s.uploaderOpen
	s.cycle++
	if !s.uploaderOpen && s.pending != nil {
		s.pending = nil
		s.logger.Debug("uploader closed, pending ocr context discarded")
	}
	return s.uploaderOpen
}

func (s *ChatService) NewChat() models.Session {
	sess := s.store.CreateSession()
	s.logger.Info("chat created", "session_id", sess.ID)
	return sess
}

func (s *ChatService) SelectChat(id string) (models.Session, error) {
	if err := s.store.SetCurrent(id); err != nil {
		return models.Session{}, err
	}
	return s.store.Get(id)
}

func (s *ChatService) GetChat(id string) (models.Session, error) {
	return s.store.Get(id)
}

func (s *ChatService) RenameChat(id, title string) (models.Session, error) {
	if err := s.store.Rename(id, title); err != nil {
		return models.Session{}, err
	}
	return s.store.Get(id)
}

// DeleteChat removes a session and, when archiving is enabled, its archived images.
func (s *ChatService) DeleteChat(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}

	log := s.logger.With("session_id", id)
	log.Info("chat deleted")

	if s.archive == nil {
		return nil
	}
	for _, m := range sess.Messages {
		if m.ImageKey == "" {
			continue
		}
		if err := s.archive.DeleteFile(ctx, m.ImageKey); err != nil {
			log.Warn("failed to delete archived image", "key", m.ImageKey, "error", err)
		}
	}
	return nil
}

// ListChats returns chat summaries in recency order, filtered by title when term is set.
func (s *ChatService) ListChats(term string) []models.SessionSummary {
	sessions := s.store.Filter(term)
	out := make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Summary())
	}
	return out
}

// Current returns the current chat, starting a new one if none is selected.
func (s *ChatService) Current(ctx context.Context) models.Session {
	sess, err := s.store.GetCurrent()
	if err == nil {
		return sess
	}
	s.logger.WarnContext(ctx, "no current chat, starting a new one", "error", err)
	return s.NewChat()
}

// UploadResult reports the outcome of OCR on an uploaded image.
type UploadResult struct {
	Text      string `json:"text"`
	Found     bool   `json:"found"`
	OCRFailed bool   `json:"ocr_failed"`
}

// UploadImage normalizes an image, runs OCR on it and stores the result as
// the pending OCR context for the next prompt. An OCR failure is kept as the
// pending text so that it reaches the transcript like any other extraction.
func (s *ChatService) UploadImage(ctx context.Context, data []byte) (UploadResult, error) {
	s.mu.Lock()
	open, cycle := s.uploaderOpen, s.cycle
	s.mu.Unlock()
	if !open {
		return UploadResult{}, ErrUploaderClosed
	}

	png, err := ocr.Normalize(data)
	if err != nil {
		return UploadResult{}, err
	}

	ocrCtx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()

	var res UploadResult
	text, err := s.extractor.Extract(ocrCtx, png)
	if err != nil {
		s.logger.ErrorContext(ctx, "ocr failed", "error", err)
		res.Text = ocrFailureText(err)
		res.OCRFailed = true
	} else {
		res.Text = strings.TrimSpace(text)
	}
	res.Found = res.Text != ""
	if !res.Found {
		s.logger.WarnContext(ctx, "no readable text found in image")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.uploaderOpen || s.cycle != cycle {
		s.logger.WarnContext(ctx, "upload cycle ended during ocr, result dropped")
		return UploadResult{}, fmt.Errorf("%w: upload cycle ended during ocr", ErrUploaderClosed)
	}
	s.pending = &models.PendingImage{Text: res.Text, PNG: png}
	return res, nil
}

// TurnResult lists what a turn appended to the session.
type TurnResult struct {
	SessionID string           `json:"session_id"`
	Appended  []models.Message `json:"appended"`
	Skipped   bool             `json:"skipped"`
}

// SubmitPrompt is SubmitUserTurn under the name the presentation events use.
func (s *ChatService) SubmitPrompt(ctx context.Context, text string) (TurnResult, error) {
	return s.SubmitUserTurn(ctx, text)
}

// SubmitUserTurn appends the user's prompt to the current chat, shows the
// pending OCR text if any, asks the model and appends its reply or a failure
// notice. The upload cycle ends with the turn.
func (s *ChatService) SubmitUserTurn(ctx context.Context, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{Skipped: true}, nil
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	sid, ok := s.store.CurrentID()
	if !ok {
		return TurnResult{}, store.ErrNoCurrentSession
	}
	log := s.logger.With("session_id", sid)

	var pending *models.PendingImage
	s.mu.Lock()
	seen, cycle := s.pending, s.cycle
	if seen != nil && strings.TrimSpace(seen.Text) != "" {
		pending = seen
	}
	s.mu.Unlock()
	defer s.endUploadCycle(log, cycle, seen)

	result := TurnResult{SessionID: sid}
	appendMsg := func(m models.Message) error {
		saved, err := s.store.AppendMessage(sid, m)
		if err != nil {
			return fmt.Errorf("append %s message: %w", m.Kind, err)
		}
		result.Appended = append(result.Appended, saved)
		return nil
	}

	userMsg := models.Message{Role: models.RoleUser, Kind: models.KindPrompt, Text: text}
	ocrText := ""
	if pending != nil {
		ocrText = pending.Text
		userMsg.Image = base64.StdEncoding.EncodeToString(pending.PNG)
		userMsg.ImageKey = s.archiveImage(ctx, log, sid, pending.PNG)
	}
	if err := appendMsg(userMsg); err != nil {
		return result, err
	}

	if ocrText != "" {
		err := appendMsg(models.Message{Role: models.RoleAssistant, Kind: models.KindOCRText, Text: ocrDisplayText(ocrText)})
		if err != nil {
			return result, err
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	started := time.Now()
	reply, err := s.llm.Generate(genCtx, BuildPrompt(text, ocrText))

	answer := models.Message{Role: models.RoleAssistant}
	if err != nil {
		log.Error("model call failed", "error", err, "elapsed", time.Since(started))
		answer.Kind = models.KindError
		answer.Text = failureText(err)
	} else {
		log.Info("model replied", "grounded", ocrText != "", "elapsed", time.Since(started))
		answer.Kind = models.KindReply
		answer.Text = replyText(reply)
	}
	if err := appendMsg(answer); err != nil {
		return result, err
	}

	return result, nil
}

// endUploadCycle clears the OCR context the turn started with and closes the
// uploader. A toggle or a new upload during the turn starts a cycle the turn
// does not own, and that state is left alone.
func (s *ChatService) endUploadCycle(log *slog.Logger, cycle uint64, seen *models.PendingImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cycle != cycle || s.pending != seen {
		log.Debug("uploader changed during turn, keeping new upload state")
		return
	}
	s.pending = nil
	s.uploaderOpen = false
	s.cycle++
}

// archiveImage uploads png when archiving is enabled and returns its key.
// Failures are logged and yield an empty key.
func (s *ChatService) archiveImage(ctx context.Context, log *slog.Logger, sid string, png []byte) string {
	if s.archive == nil {
		return ""
	}
	key := objectclient.ImageKey(sid, uuid.NewString())
	if _, err := s.archive.UploadFile(ctx, key, png, "image/png"); err != nil {
		log.Warn("failed to archive image", "error", err)
		return ""
	}
	return key
}
