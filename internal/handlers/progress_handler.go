// internal/handlers/progress_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/service"
	"go_malayalam_trainer/internal/webutil"
)

// ProgressHandler はユーザー進捗の照会と更新を提供します。
// 更新系は進捗ファサードの契約どおり失敗を伝播しないため、
// ストレージ障害時でも 200 と更新後スナップショットを返します。
type ProgressHandler struct {
	progress service.ProgressService
	logger   *slog.Logger
}

func NewProgressHandler(p service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{progress: p, logger: logger}
}

// GetProgress は現在の進捗スナップショットを返します
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, h.progress.Snapshot())
}

// CompleteLetter は文字を学習済みにします
func (h *ProgressHandler) CompleteLetter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CompleteLetter"))

	id := chi.URLParam(r, "letterID")
	h.progress.MarkLetterCompleted(r.Context(), id)

	logger.Info("Letter marked completed", slog.String("letter_id", id))
	webutil.RespondWithJSON(w, http.StatusOK, h.progress.Snapshot())
}

// CompleteWord は単語を学習済みにします
func (h *ProgressHandler) CompleteWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CompleteWord"))

	id := chi.URLParam(r, "wordID")
	h.progress.MarkWordCompleted(r.Context(), id)

	logger.Info("Word marked completed", slog.String("word_id", id))
	webutil.RespondWithJSON(w, http.StatusOK, h.progress.Snapshot())
}

// SaveQuizScore はクイズスコアを保存します（キーごとの max マージ）
func (h *ProgressHandler) SaveQuizScore(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SaveQuizScore"))

	key := chi.URLParam(r, "quizKey")
	var req model.SaveQuizScoreRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid quiz score request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	h.progress.SaveQuizScore(r.Context(), key, req.Score)

	logger.Info("Quiz score saved", slog.String("quiz_key", key), slog.Int("score", req.Score))
	webutil.RespondWithJSON(w, http.StatusOK, h.progress.Snapshot())
}

// UpdateFlashcardProgress はカードごとの習熟度を上書きします
func (h *ProgressHandler) UpdateFlashcardProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "UpdateFlashcardProgress"))

	cardID := chi.URLParam(r, "cardID")
	var req model.UpdateFlashcardProgressRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid flashcard progress request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	h.progress.UpdateFlashcardProgress(r.Context(), cardID, req.Value)

	webutil.RespondWithJSON(w, http.StatusOK, h.progress.Snapshot())
}

// AddStudyTime は学習時間（秒）を加算します
func (h *ProgressHandler) AddStudyTime(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "AddStudyTime"))

	var req model.AddStudyTimeRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid study time request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	h.progress.AddStudyTime(r.Context(), req.Seconds)

	webutil.RespondWithJSON(w, http.StatusOK, h.progress.Snapshot())
}

// ResetProgress は進捗をすべて削除します
func (h *ProgressHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ResetProgress"))

	h.progress.Reset(r.Context())

	logger.Info("User progress reset")
	w.WriteHeader(http.StatusNoContent)
}
