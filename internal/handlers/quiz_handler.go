// internal/handlers/quiz_handler.go
package handlers

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"go_malayalam_trainer/internal/catalog"
	"go_malayalam_trainer/internal/config"
	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/quiz"
	"go_malayalam_trainer/internal/service"
	"go_malayalam_trainer/internal/webutil"
)

// QuizHandler はクイズセッションのライフサイクルを提供します
type QuizHandler struct {
	catalog  *catalog.Catalog
	progress service.ProgressService
	cfg      config.Config
	logger   *slog.Logger
	sessions *sessionRegistry[*quiz.Session]
	// newRand はセッションごとの乱数源。テストでは固定シードに差し替えます
	newRand func() *rand.Rand
}

func NewQuizHandler(c *catalog.Catalog, p service.ProgressService, cfg config.Config, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		catalog:  c,
		progress: p,
		cfg:      cfg,
		logger:   logger,
		sessions: newSessionRegistry[*quiz.Session](cfg.App.SessionLimit),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// StartQuiz は新しいクイズセッションを開始します
func (h *QuizHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartQuiz"))

	var req model.StartQuizRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid quiz start request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	items, quizKey := h.buildPool(req)
	count := req.Count
	if count == 0 {
		count = h.cfg.App.QuizQuestionCount
	}

	session, err := quiz.NewSession(quiz.Config{
		QuizKey:       quizKey,
		QuestionCount: count,
		AdvanceDelay:  h.cfg.App.QuizAdvanceDelay,
		Rand:          h.newRand(),
	}, items)
	if err != nil {
		logger.Warn("Failed to create quiz session", slog.String("error", err.Error()), slog.Any("request", req))
		webutil.HandleError(w, err)
		return
	}

	if err := h.sessions.add(session.ID(), session); err != nil {
		session.Close()
		logger.Warn("Session registry rejected new quiz", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Quiz session started",
		slog.String("quiz_id", session.ID().String()),
		slog.String("quiz_key", quizKey),
		slog.Int("active_sessions", h.sessions.len()),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, session.State())
}

// buildPool はリクエスト条件からコンテンツプールとスコアキーを構築します
func (h *QuizHandler) buildPool(req model.StartQuizRequest) ([]quiz.Item, string) {
	if req.Kind == "words" {
		words := h.catalog.Words(req.Category, "")
		key := "words_all"
		if req.Category != "" {
			key = fmt.Sprintf("words_%s", req.Category)
		}
		items := lo.Map(words, func(w model.Word, _ int) quiz.Item {
			return quiz.Item{ID: w.ID, Prompt: w.Malayalam, Answer: w.Transliteration}
		})
		return items, key
	}

	letters := h.catalog.Letters(model.LetterType(req.LetterType))
	key := "letters_all"
	if req.LetterType != "" {
		key = fmt.Sprintf("letters_%s", req.LetterType)
	}
	items := lo.Map(letters, func(l model.Letter, _ int) quiz.Item {
		return quiz.Item{ID: l.ID, Prompt: l.Malayalam, Answer: l.Transliteration}
	})
	return items, key
}

// GetQuiz は現在の状態を返します
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session.State())
}

// SubmitAnswer は現在の設問に回答します
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SubmitAnswer"))

	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}

	var req model.SubmitAnswerRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid answer request", slog.String("error", err.Error()))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, session.Answer(req.Option))
}

// AdvanceQuiz は次の設問へ明示的に進めます（自動遷移を無効にした構成向け）
func (h *QuizHandler) AdvanceQuiz(w http.ResponseWriter, r *http.Request) {
	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session.Advance())
}

// CompleteQuiz は complete 状態のセッションのスコアを進捗に保存して閉じます
func (h *QuizHandler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CompleteQuiz"))

	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}

	if !session.IsComplete() {
		appErr := model.NewAppError("QUIZ_NOT_COMPLETE", "Quiz is still in progress.", "", model.ErrConflict)
		webutil.HandleError(w, appErr)
		return
	}

	state := session.State()
	h.progress.SaveQuizScore(r.Context(), session.QuizKey(), session.Score())
	h.sessions.remove(session.ID())
	session.Close()

	logger.Info("Quiz completed",
		slog.String("quiz_id", session.ID().String()),
		slog.String("quiz_key", session.QuizKey()),
		slog.Int("score", state.Score),
	)
	webutil.RespondWithJSON(w, http.StatusOK, state)
}

// CloseQuiz はスコアを保存せずにセッションを破棄します
func (h *QuizHandler) CloseQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CloseQuiz"))

	session, err := h.lookup(r)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}

	h.sessions.remove(session.ID())
	session.Close()

	logger.Info("Quiz session closed", slog.String("quiz_id", session.ID().String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) lookup(r *http.Request) (*quiz.Session, error) {
	id, err := uuid.Parse(chi.URLParam(r, "quizID"))
	if err != nil {
		return nil, model.NewAppError("INVALID_QUIZ_ID", "Quiz id must be a UUID.", "quizID", model.ErrInvalidInput)
	}
	session, ok := h.sessions.get(id)
	if !ok {
		return nil, model.NewAppError("QUIZ_NOT_FOUND", "Quiz session not found.", "quizID", model.ErrNotFound)
	}
	return session, nil
}
