// internal/handlers/catalog_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go_malayalam_trainer/internal/catalog"
	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/webutil"
)

// CatalogHandler は読み取り専用の学習コンテンツを提供します
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewCatalogHandler(c *catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{catalog: c, logger: logger}
}

// GetLetters は文字一覧を返します。?type= で種別を絞り込めます
func (h *CatalogHandler) GetLetters(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetLetters"))

	letterType := model.LetterType(r.URL.Query().Get("type"))
	if letterType != "" {
		switch letterType {
		case model.LetterTypeVowel, model.LetterTypeConsonant, model.LetterTypeNumber, model.LetterTypeConjunct, model.LetterTypeSymbol:
		default:
			logger.Warn("Invalid letter type requested", slog.String("type", string(letterType)))
			appErr := model.NewAppError("INVALID_LETTER_TYPE", "Unknown letter type.", "type", model.ErrInvalidInput)
			webutil.HandleError(w, appErr)
			return
		}
	}

	webutil.RespondWithJSON(w, http.StatusOK, h.catalog.Letters(letterType))
}

// GetLetter は文字 1 件を返します
func (h *CatalogHandler) GetLetter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetLetter"))

	id := chi.URLParam(r, "letterID")
	letter, ok := h.catalog.LetterByID(id)
	if !ok {
		logger.Warn("Letter not found", slog.String("letter_id", id))
		appErr := model.NewAppError("LETTER_NOT_FOUND", "Letter not found.", "letterID", model.ErrNotFound)
		webutil.HandleError(w, appErr)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, letter)
}

// GetWords は単語一覧を返します。?category= と ?difficulty= で絞り込めます
func (h *CatalogHandler) GetWords(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetWords"))

	difficulty := model.Difficulty(r.URL.Query().Get("difficulty"))
	if difficulty != "" && !difficulty.Valid() {
		logger.Warn("Invalid difficulty requested", slog.String("difficulty", string(difficulty)))
		appErr := model.NewAppError("INVALID_DIFFICULTY", "Unknown difficulty.", "difficulty", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	words := h.catalog.Words(r.URL.Query().Get("category"), difficulty)
	webutil.RespondWithJSON(w, http.StatusOK, words)
}

// GetWord は単語 1 件を返します
func (h *CatalogHandler) GetWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetWord"))

	id := chi.URLParam(r, "wordID")
	word, ok := h.catalog.WordByID(id)
	if !ok {
		logger.Warn("Word not found", slog.String("word_id", id))
		appErr := model.NewAppError("WORD_NOT_FOUND", "Word not found.", "wordID", model.ErrNotFound)
		webutil.HandleError(w, appErr)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, word)
}

// GetWordCategories は単語カテゴリ一覧を返します
func (h *CatalogHandler) GetWordCategories(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, h.catalog.WordCategories())
}

// GetGrammarLessons は文法レッスン一覧を返します
func (h *CatalogHandler) GetGrammarLessons(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, h.catalog.Grammar())
}

// GetGrammarLesson は文法レッスン 1 件を返します
func (h *CatalogHandler) GetGrammarLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetGrammarLesson"))

	id := chi.URLParam(r, "lessonID")
	lesson, ok := h.catalog.GrammarLessonByID(id)
	if !ok {
		logger.Warn("Grammar lesson not found", slog.String("lesson_id", id))
		appErr := model.NewAppError("LESSON_NOT_FOUND", "Grammar lesson not found.", "lessonID", model.ErrNotFound)
		webutil.HandleError(w, appErr)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, lesson)
}
