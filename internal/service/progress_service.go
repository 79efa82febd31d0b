// internal/service/progress_service.go
package service

import (
	"context"
	"log/slog"
	"sync"

	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/repository"
)

// ProgressService は ProgressStore の上に共有スナップショットを保持するファサードです。
// 全リーダーが同一のスナップショットを参照し、更新系は
// 「書き込み → 再読み込み」を 1 組として直列に実行します
// （read-after-write。楽観的なローカル更新は行いません）。
//
// ProgressStore と同様、更新系メソッドはエラーを返しません。
type ProgressService interface {
	// Initialize は永続化済み進捗を読み込み、ストリークを 1 回更新します。
	// サーバー起動時に呼び出します。
	Initialize(ctx context.Context)

	MarkLetterCompleted(ctx context.Context, letterID string)
	MarkWordCompleted(ctx context.Context, wordID string)
	SaveQuizScore(ctx context.Context, quizKey string, score int)
	UpdateFlashcardProgress(ctx context.Context, cardID string, value float64)
	AddStudyTime(ctx context.Context, seconds int64)
	Reset(ctx context.Context)

	// IsLetterCompleted / IsWordCompleted はスナップショットに対する純粋クエリです
	IsLetterCompleted(letterID string) bool
	IsWordCompleted(wordID string) bool

	// Snapshot は現在のスナップショットのコピーを返します
	Snapshot() *model.UserProgress

	// Refresh はストアから再読み込みしてスナップショットを差し替えます
	Refresh(ctx context.Context)
}

type progressService struct {
	store  repository.ProgressStore
	logger *slog.Logger

	// mu は「書き込み → 再読み込み」ペアの直列化とスナップショットの保護を兼ねる
	mu       sync.RWMutex
	snapshot *model.UserProgress
}

func NewProgressService(store repository.ProgressStore, logger *slog.Logger) ProgressService {
	return &progressService{
		store:  store,
		logger: logger,
	}
}

func (s *progressService) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.UpdateStreak(ctx)
	s.snapshot = s.store.Load(ctx)
	s.logger.InfoContext(ctx, "User progress initialized",
		"completed_letters", len(s.snapshot.CompletedLetterIDs),
		"completed_words", len(s.snapshot.CompletedWordIDs),
		"streak_days", s.snapshot.StreakDays,
	)
}

// mutate は store への書き込みと再読み込みをロック下でペアで行います
func (s *progressService) mutate(ctx context.Context, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(ctx)
	s.snapshot = s.store.Load(ctx)
}

func (s *progressService) MarkLetterCompleted(ctx context.Context, letterID string) {
	s.mutate(ctx, func(ctx context.Context) {
		s.store.MarkLetterCompleted(ctx, letterID)
	})
}

func (s *progressService) MarkWordCompleted(ctx context.Context, wordID string) {
	s.mutate(ctx, func(ctx context.Context) {
		s.store.MarkWordCompleted(ctx, wordID)
	})
}

func (s *progressService) SaveQuizScore(ctx context.Context, quizKey string, score int) {
	s.mutate(ctx, func(ctx context.Context) {
		s.store.SaveQuizScore(ctx, quizKey, score)
	})
}

func (s *progressService) UpdateFlashcardProgress(ctx context.Context, cardID string, value float64) {
	s.mutate(ctx, func(ctx context.Context) {
		s.store.UpdateFlashcardProgress(ctx, cardID, value)
	})
}

func (s *progressService) AddStudyTime(ctx context.Context, seconds int64) {
	s.mutate(ctx, func(ctx context.Context) {
		s.store.AddStudyTime(ctx, seconds)
	})
}

func (s *progressService) Reset(ctx context.Context) {
	s.mutate(ctx, func(ctx context.Context) {
		s.store.Reset(ctx)
	})
}

func (s *progressService) IsLetterCompleted(letterID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current().HasCompletedLetter(letterID)
}

func (s *progressService) IsWordCompleted(wordID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current().HasCompletedWord(wordID)
}

func (s *progressService) Snapshot() *model.UserProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current().Clone()
}

func (s *progressService) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = s.store.Load(ctx)
}

// current はロック取得済みの前提で、未初期化時の nil を吸収します
func (s *progressService) current() *model.UserProgress {
	if s.snapshot == nil {
		return &model.UserProgress{
			CompletedLetterIDs: []string{},
			CompletedWordIDs:   []string{},
			QuizScores:         map[string]int{},
			FlashcardProgress:  map[string]float64{},
			Achievements:       []string{},
		}
	}
	return s.snapshot
}
