// internal/repository/progress_repository.go
package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go_malayalam_trainer/internal/config"
	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/storage"
)

// ContentChecker は進捗書き込み時の ID 検証に使う最小インターフェースです。
// 通常は catalog.Catalog を渡します。
type ContentChecker interface {
	HasLetter(id string) bool
	HasWord(id string) bool
}

// ProgressStore は単一ユーザーの学習進捗を永続化するストアです。
//
// 設計上の重要な契約: 更新系メソッドはエラーを返しません。
// ストレージ障害はこの層でログに記録して握りつぶし、呼び出し側には
// 伝播させません（学習セッションを進捗保存の失敗で中断しないため）。
// 失敗した更新は永続化されず、次回の Load には反映されません。
type ProgressStore interface {
	// Load は永続化された進捗を返します。レコードが存在しない場合や
	// 破損している場合はデフォルト値を返し、エラーにはなりません。
	Load(ctx context.Context) *model.UserProgress

	MarkLetterCompleted(ctx context.Context, letterID string)
	MarkWordCompleted(ctx context.Context, wordID string)

	// SaveQuizScore はキーごとに max(既存, 新規) でマージします。
	// スコアが下がる書き込みは無視されます。
	SaveQuizScore(ctx context.Context, quizKey string, score int)

	// UpdateFlashcardProgress はキーごとの上書き（last-write-wins）です。
	// 習熟度は下がることもあるため max マージは行いません。
	UpdateFlashcardProgress(ctx context.Context, cardID string, value float64)

	// UpdateStreak は lastActiveDate と現在時刻の暦日差で streakDays を再計算します。
	// 同一日なら streak は変わりませんが、lastActiveDate は常に現在時刻へ更新されます。
	UpdateStreak(ctx context.Context)

	AddStudyTime(ctx context.Context, seconds int64)

	// Reset は進捗レコードを削除します（ユーザー明示操作）。
	Reset(ctx context.Context)
}

type kvProgressStore struct {
	store   storage.KVStore
	checker ContentChecker // nil の場合は ID 検証をスキップ
	logger  *slog.Logger
	now     func() time.Time

	// read-modify-write を直列化し、キー単位マージの lost-update を防ぐ
	mu sync.Mutex
}

// NewProgressStore は KVStore 上の ProgressStore を生成します。
// now が nil の場合は time.Now を使います。
func NewProgressStore(store storage.KVStore, checker ContentChecker, logger *slog.Logger, now func() time.Time) ProgressStore {
	if now == nil {
		now = time.Now
	}
	return &kvProgressStore{
		store:   store,
		checker: checker,
		logger:  logger,
		now:     now,
	}
}

func (s *kvProgressStore) Load(ctx context.Context) *model.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load はロック取得済みの前提で呼び出します
func (s *kvProgressStore) load(ctx context.Context) *model.UserProgress {
	raw, ok, err := s.store.Get(ctx, config.UserProgressKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read user progress, falling back to defaults", "error", err)
		return model.DefaultUserProgress(s.now())
	}
	if !ok {
		return model.DefaultUserProgress(s.now())
	}

	var p model.UserProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.WarnContext(ctx, "User progress record is corrupt, falling back to defaults", "error", err)
		return model.DefaultUserProgress(s.now())
	}
	normalize(&p)
	return &p
}

// normalize は JSON 上で null になり得るフィールドを空コレクションに揃えます
func normalize(p *model.UserProgress) {
	if p.CompletedLetterIDs == nil {
		p.CompletedLetterIDs = []string{}
	}
	if p.CompletedWordIDs == nil {
		p.CompletedWordIDs = []string{}
	}
	if p.QuizScores == nil {
		p.QuizScores = map[string]int{}
	}
	if p.FlashcardProgress == nil {
		p.FlashcardProgress = map[string]float64{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
}

// save はロック取得済みの前提で呼び出します。失敗はログのみ。
func (s *kvProgressStore) save(ctx context.Context, op string, p *model.UserProgress) {
	raw, err := json.Marshal(p)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to serialize user progress", "operation", op, "error", err)
		return
	}
	if err := s.store.Set(ctx, config.UserProgressKey, string(raw)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist user progress, update lost", "operation", op, "error", err)
	}
}

// mutate は load → 変更 → save をロック下で行います。
// fn が false を返した場合（変更なし）は書き込みをスキップします。
func (s *kvProgressStore) mutate(ctx context.Context, op string, fn func(p *model.UserProgress) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	if !fn(p) {
		return
	}
	p.LastActiveDate = s.now().Format(time.RFC3339)
	s.save(ctx, op, p)
}

func (s *kvProgressStore) MarkLetterCompleted(ctx context.Context, letterID string) {
	if s.checker != nil && !s.checker.HasLetter(letterID) {
		s.logger.WarnContext(ctx, "Ignoring completion for unknown letter id", "letter_id", letterID)
		return
	}
	s.mutate(ctx, "mark_letter_completed", func(p *model.UserProgress) bool {
		if p.HasCompletedLetter(letterID) {
			return false
		}
		p.CompletedLetterIDs = append(p.CompletedLetterIDs, letterID)
		return true
	})
}

func (s *kvProgressStore) MarkWordCompleted(ctx context.Context, wordID string) {
	if s.checker != nil && !s.checker.HasWord(wordID) {
		s.logger.WarnContext(ctx, "Ignoring completion for unknown word id", "word_id", wordID)
		return
	}
	s.mutate(ctx, "mark_word_completed", func(p *model.UserProgress) bool {
		if p.HasCompletedWord(wordID) {
			return false
		}
		p.CompletedWordIDs = append(p.CompletedWordIDs, wordID)
		return true
	})
}

func (s *kvProgressStore) SaveQuizScore(ctx context.Context, quizKey string, score int) {
	s.mutate(ctx, "save_quiz_score", func(p *model.UserProgress) bool {
		if old, exists := p.QuizScores[quizKey]; exists && old >= score {
			// スコアは単調非減少。lastActiveDate の更新のため書き込みは行う
			return true
		}
		p.QuizScores[quizKey] = score
		return true
	})
}

func (s *kvProgressStore) UpdateFlashcardProgress(ctx context.Context, cardID string, value float64) {
	s.mutate(ctx, "update_flashcard_progress", func(p *model.UserProgress) bool {
		p.FlashcardProgress[cardID] = value
		return true
	})
}

func (s *kvProgressStore) UpdateStreak(ctx context.Context) {
	s.mutate(ctx, "update_streak", func(p *model.UserProgress) bool {
		now := s.now()
		last, err := time.Parse(time.RFC3339, p.LastActiveDate)
		if err != nil {
			// 日付が読めない場合は今日から数え直す
			p.StreakDays = 1
			return true
		}

		switch calendarDayDelta(last, now) {
		case 0:
			// 同一日: streak は不変。lastActiveDate だけ更新される
		case 1:
			p.StreakDays++
		default:
			p.StreakDays = 1
		}
		return true
	})
}

func (s *kvProgressStore) AddStudyTime(ctx context.Context, seconds int64) {
	if seconds <= 0 {
		return
	}
	s.mutate(ctx, "add_study_time", func(p *model.UserProgress) bool {
		p.TotalStudyTime += seconds
		return true
	})
}

func (s *kvProgressStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, config.UserProgressKey); err != nil {
		s.logger.ErrorContext(ctx, "Failed to reset user progress", "error", err)
	}
}

// calendarDayDelta は from から to までの暦日の差（ローカルタイム基準）を返します。
// 時刻成分は無視されます。to が過去方向の場合は負数になります。
func calendarDayDelta(from, to time.Time) int {
	fy, fm, fd := from.Local().Date()
	ty, tm, td := to.Local().Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
