// internal/handlers/flashcard_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"go_malayalam_trainer/internal/catalog"
	"go_malayalam_trainer/internal/config"
	"go_malayalam_trainer/internal/flashcard"
	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/service"
	"go_malayalam_trainer/internal/webutil"
)

// FlashcardHandler はフラッシュカードセッションのライフサイクルを提供します
type FlashcardHandler struct {
	catalog  *catalog.Catalog
	progress service.ProgressService
	logger   *slog.Logger
	sessions *sessionRegistry[*flashcard.Session]
}

func NewFlashcardHandler(c *catalog.Catalog, p service.ProgressService, cfg config.Config, logger *slog.Logger) *FlashcardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardHandler{
		catalog:  c,
		progress: p,
		logger:   logger,
		sessions: newSessionRegistry[*flashcard.Session](cfg.App.SessionLimit),
	}
}

// StartSession は新しいフラッシュカードセッションを開始します
func (h *FlashcardHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartSession"))

	var req model.StartFlashcardsRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid flashcards start request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	cards := h.catalog.Words(req.Category, model.Difficulty(req.Difficulty))
	session, err := flashcard.NewSession(cards)
	if err != nil {
		logger.Warn("Failed to create flashcard session", slog.String("error", err.Error()), slog.Any("request", req))
		webutil.HandleError(w, err)
		return
	}

	if err := h.sessions.add(session.ID(), session); err != nil {
		logger.Warn("Session registry rejected new flashcard session", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Flashcard session started",
		slog.String("session_id", session.ID().String()),
		slog.Int("cards", session.State().Total),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, session.State())
}

// GetSession は現在の状態を返します
func (h *FlashcardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session.State())
}

// NextCard は次のカードへ進みます
func (h *FlashcardHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session.Next())
}

// PreviousCard は前のカードへ戻ります
func (h *FlashcardHandler) PreviousCard(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session.Previous())
}

// FlipCard はカードの表裏を切り替えます
func (h *FlashcardHandler) FlipCard(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session.Flip())
}

// SaveCardProgress は表示中のカードの習熟度を進捗に記録します
func (h *FlashcardHandler) SaveCardProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SaveCardProgress"))

	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}

	var req model.UpdateFlashcardProgressRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid card progress request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	card := session.Current()
	h.progress.UpdateFlashcardProgress(r.Context(), card.ID, req.Value)

	logger.Info("Flashcard progress saved", slog.String("card_id", card.ID))
	webutil.RespondWithJSON(w, http.StatusOK, session.State())
}

// CloseSession はセッションを破棄します
func (h *FlashcardHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CloseSession"))

	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}

	h.sessions.remove(session.ID())

	logger.Info("Flashcard session closed", slog.String("session_id", session.ID().String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *FlashcardHandler) lookup(r *http.Request) (*flashcard.Session, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, model.NewAppError("INVALID_SESSION_ID", "Session id must be a UUID.", "sessionID", model.ErrInvalidInput)
	}
	session, ok := h.sessions.get(id)
	if !ok {
		return nil, model.NewAppError("SESSION_NOT_FOUND", "Flashcard session not found.", "sessionID", model.ErrNotFound)
	}
	return session, nil
}
