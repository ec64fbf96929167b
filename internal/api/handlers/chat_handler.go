package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/Chatlens/internal/models"
	"github.com/markdave123-py/Chatlens/internal/services"
)

type ChatHandler struct {
	svc    *services.ChatService
	logger *slog.Logger
}

func NewChatHandler(svc *services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// ChatView is a chat together with the uploader state shown beside it.
type ChatView struct {
	Chat     models.Session         `json:"chat"`
	Uploader services.UploaderState `json:"uploader"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type promptRequest struct {
	Text string `json:"text"`
}

type promptResponse struct {
	Turn services.TurnResult `json:"turn"`
	Chat *models.Session     `json:"chat,omitempty"`
}

func (h *ChatHandler) view(sess models.Session) ChatView {
	return ChatView{Chat: sess, Uploader: h.svc.Uploader()}
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.view(h.svc.NewChat()))
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats := h.svc.ListChats(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (h *ChatHandler) CurrentChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view(h.svc.Current(r.Context())))
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetChat(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

func (h *ChatHandler) SelectChat(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.SelectChat(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	sess, err := h.svc.RenameChat(chi.URLParam(r, "id"), req.Title)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteChat(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	turn, err := h.svc.SubmitPrompt(r.Context(), req.Text)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	resp := promptResponse{Turn: turn}
	if !turn.Skipped {
		if sess, err := h.svc.GetChat(turn.SessionID); err == nil {
			resp.Chat = &sess
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
