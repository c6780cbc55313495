package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvloznov/budgetx/internal/api/middleware"
	"github.com/dvloznov/budgetx/internal/assistant"
	"github.com/dvloznov/budgetx/internal/store"
	"github.com/rs/zerolog"
)

// historyWindow is how many recent messages seed the chat prompt.
const historyWindow = 10

const (
	replyNoAssistant  = "The AI service is not configured. Please set GEMINI_API_KEY and restart the backend."
	replyModelTrouble = "I'm having trouble reaching the AI service right now. Please try again in a moment."
)

// Replier produces chat replies from context and history.
type Replier interface {
	ChatReply(ctx context.Context, analyticsContext string, history []assistant.Message) (string, error)
}

// ChatHandler handles the conversational endpoints.
type ChatHandler struct {
	files     FileStore
	messages  MessageStore
	assistant Replier // nil when the AI service is not configured
	log       zerolog.Logger
}

// MessageStore is the slice of the storage layer the chat endpoints need.
type MessageStore interface {
	CreateMessage(ctx context.Context, userID int64, role, content string) (*store.ChatMessage, error)
	ListMessages(ctx context.Context, userID int64) ([]*store.ChatMessage, error)
	ListRecentMessages(ctx context.Context, userID int64, limit int) ([]*store.ChatMessage, error)
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(files FileStore, messages MessageStore, assistant Replier, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{files: files, messages: messages, assistant: assistant, log: log}
}

type chatRequest struct {
	Message string `json:"message"`
	FileID  *int64 `json:"file_id,omitempty"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	analyticsContext := ""
	if req.FileID != nil {
		f, err := h.files.GetFile(ctx, *req.FileID, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.log.Error().Err(err).Int64("file_id", *req.FileID).Msg("Failed to load file context")
		}
		if f != nil && f.AnalyticsJSON != "" {
			analyticsContext = f.AnalyticsJSON
		}
	}

	if _, err := h.messages.CreateMessage(ctx, userID, "user", req.Message); err != nil {
		h.log.Error().Err(err).Msg("Failed to save user message")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save message")
		return
	}

	reply := h.reply(ctx, userID, analyticsContext)

	if _, err := h.messages.CreateMessage(ctx, userID, "assistant", reply); err != nil {
		h.log.Error().Err(err).Msg("Failed to save assistant message")
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"role":    "assistant",
		"content": reply,
	})
}

func (h *ChatHandler) reply(ctx context.Context, userID int64, analyticsContext string) string {
	if h.assistant == nil {
		return replyNoAssistant
	}

	recent, err := h.messages.ListRecentMessages(ctx, userID, historyWindow)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load chat history")
		return replyModelTrouble
	}

	history := make([]assistant.Message, 0, len(recent))
	for _, m := range recent {
		history = append(history, assistant.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := h.assistant.ChatReply(ctx, analyticsContext, history)
	if err != nil {
		h.log.Error().Err(err).Msg("Chat reply failed")
		return replyModelTrouble
	}
	return reply
}

// History handles GET /api/chat/history
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	messages, err := h.messages.ListMessages(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load chat history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}

	out := make([]map[string]interface{}, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]interface{}{
			"role":      m.Role,
			"content":   m.Content,
			"timestamp": m.Timestamp,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, out)
}
