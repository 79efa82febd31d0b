// internal/repository/progress_repository_test.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_malayalam_trainer/internal/config"
	"go_malayalam_trainer/internal/model"
	"go_malayalam_trainer/internal/storage"
	"go_malayalam_trainer/internal/storage/mocks"
)

// --- テストヘルパー ---

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fixedClock は固定時刻を返すクロックです
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// stubChecker は固定の ID 集合を持つ ContentChecker です
type stubChecker struct {
	letters map[string]bool
	words   map[string]bool
}

func (c *stubChecker) HasLetter(id string) bool { return c.letters[id] }
func (c *stubChecker) HasWord(id string) bool   { return c.words[id] }

func newTestChecker() *stubChecker {
	return &stubChecker{
		letters: map[string]bool{"v1": true, "v2": true, "c1": true},
		words:   map[string]bool{"w1": true, "w2": true},
	}
}

var baseTime = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestStore(kv storage.KVStore, now time.Time) ProgressStore {
	return NewProgressStore(kv, newTestChecker(), testLogger, fixedClock(now))
}

// --- Load ---

func TestProgressStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: レコード未作成時はデフォルトを返す", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		p := store.Load(ctx)
		require.NotNil(t, p)
		assert.Empty(t, p.CompletedLetterIDs)
		assert.Empty(t, p.CompletedWordIDs)
		assert.Empty(t, p.QuizScores)
		assert.Empty(t, p.FlashcardProgress)
		assert.Empty(t, p.Achievements)
		assert.Equal(t, 0, p.StreakDays)
		assert.Equal(t, int64(0), p.TotalStudyTime)
		assert.Equal(t, baseTime.Format(time.RFC3339), p.LastActiveDate)
	})

	t.Run("正常系: 破損レコードはデフォルトにフォールバックしエラーにならない", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, config.UserProgressKey, "{not json"))
		store := newTestStore(kv, baseTime)

		p := store.Load(ctx)
		require.NotNil(t, p)
		assert.Empty(t, p.CompletedLetterIDs)
		assert.Equal(t, 0, p.StreakDays)
	})

	t.Run("正常系: 読み込み失敗時もデフォルトを返す", func(t *testing.T) {
		mockKV := new(mocks.KVStore)
		mockKV.On("Get", mock.Anything, config.UserProgressKey).Return("", false, errors.New("disk error"))
		store := newTestStore(mockKV, baseTime)

		p := store.Load(ctx)
		require.NotNil(t, p)
		assert.Empty(t, p.CompletedLetterIDs)
		mockKV.AssertExpectations(t)
	})

	t.Run("正常系: null フィールドは空コレクションに正規化される", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, config.UserProgressKey,
			`{"completedLetters":null,"quizScores":null,"streakDays":3}`))
		store := newTestStore(kv, baseTime)

		p := store.Load(ctx)
		assert.NotNil(t, p.CompletedLetterIDs)
		assert.NotNil(t, p.QuizScores)
		assert.NotNil(t, p.FlashcardProgress)
		assert.Equal(t, 3, p.StreakDays)
	})
}

// --- MarkLetterCompleted / MarkWordCompleted ---

func TestProgressStore_MarkCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 文字の完了が永続化される", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.MarkLetterCompleted(ctx, "v1")

		p := store.Load(ctx)
		assert.True(t, p.HasCompletedLetter("v1"))
		assert.Equal(t, baseTime.Format(time.RFC3339), p.LastActiveDate)
	})

	t.Run("正常系: 重複完了は冪等", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.MarkLetterCompleted(ctx, "v1")
		store.MarkLetterCompleted(ctx, "v1")
		store.MarkWordCompleted(ctx, "w1")
		store.MarkWordCompleted(ctx, "w1")

		p := store.Load(ctx)
		assert.Equal(t, []string{"v1"}, p.CompletedLetterIDs)
		assert.Equal(t, []string{"w1"}, p.CompletedWordIDs)
	})

	t.Run("正常系: カタログ外の ID は無視される", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.MarkLetterCompleted(ctx, "v999")
		store.MarkWordCompleted(ctx, "not_a_word")

		p := store.Load(ctx)
		assert.Empty(t, p.CompletedLetterIDs)
		assert.Empty(t, p.CompletedWordIDs)
	})

	t.Run("正常系: 異なる完了は両方残る", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.MarkLetterCompleted(ctx, "v1")
		store.MarkLetterCompleted(ctx, "v2")

		p := store.Load(ctx)
		assert.True(t, p.HasCompletedLetter("v1"))
		assert.True(t, p.HasCompletedLetter("v2"))
	})
}

// --- SaveQuizScore ---

func TestProgressStore_SaveQuizScore(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: スコアは max マージで単調非減少", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.SaveQuizScore(ctx, "letters_vowels", 3)
		store.SaveQuizScore(ctx, "letters_vowels", 2)

		p := store.Load(ctx)
		assert.Equal(t, 3, p.QuizScores["letters_vowels"])
	})

	t.Run("正常系: より高いスコアは上書きされる", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.SaveQuizScore(ctx, "letters_vowels", 2)
		store.SaveQuizScore(ctx, "letters_vowels", 5)

		p := store.Load(ctx)
		assert.Equal(t, 5, p.QuizScores["letters_vowels"])
	})

	t.Run("正常系: キーごとに独立して保持される", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.SaveQuizScore(ctx, "letters_vowels", 4)
		store.SaveQuizScore(ctx, "words_family", 2)

		p := store.Load(ctx)
		assert.Equal(t, 4, p.QuizScores["letters_vowels"])
		assert.Equal(t, 2, p.QuizScores["words_family"])
	})
}

// --- UpdateFlashcardProgress ---

func TestProgressStore_UpdateFlashcardProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: last-write-wins で値の低下も許容する", func(t *testing.T) {
		store := newTestStore(storage.NewMemoryStore(), baseTime)

		store.UpdateFlashcardProgress(ctx, "w1", 0.8)
		store.UpdateFlashcardProgress(ctx, "w1", 0.3)

		p := store.Load(ctx)
		assert.Equal(t, 0.3, p.FlashcardProgress["w1"])
	})
}

// --- UpdateStreak ---

func TestProgressStore_UpdateStreak(t *testing.T) {
	ctx := context.Background()

	seed := func(kv storage.KVStore, lastActive time.Time, streak int) {
		p := model.DefaultUserProgress(lastActive)
		p.StreakDays = streak
		raw, err := json.Marshal(p)
		if err != nil {
			panic(err)
		}
		if err := kv.Set(ctx, config.UserProgressKey, string(raw)); err != nil {
			panic(err)
		}
	}

	today := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastActive time.Time
		streak     int
		wantStreak int
	}{
		{
			name:       "正常系: 昨日アクティブなら +1",
			lastActive: time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC),
			streak:     4,
			wantStreak: 5,
		},
		{
			name:       "正常系: 同一日は変化なし",
			lastActive: time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC),
			streak:     4,
			wantStreak: 4,
		},
		{
			name:       "正常系: 3日前なら 1 にリセット",
			lastActive: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
			streak:     4,
			wantStreak: 1,
		},
		{
			name:       "正常系: 未来日付（時計巻き戻り）でも 1 にリセット",
			lastActive: time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC),
			streak:     4,
			wantStreak: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			seed(kv, tt.lastActive, tt.streak)
			store := newTestStore(kv, today)

			store.UpdateStreak(ctx)

			p := store.Load(ctx)
			assert.Equal(t, tt.wantStreak, p.StreakDays)
			// no-op 日でも lastActiveDate は現在時刻に更新される
			assert.Equal(t, today.Format(time.RFC3339), p.LastActiveDate)
		})
	}

	t.Run("正常系: 同一日の 2 回目の呼び出しは streak を変えない", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		seed(kv, time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC), 4)
		store := newTestStore(kv, today)

		store.UpdateStreak(ctx)
		store.UpdateStreak(ctx)

		p := store.Load(ctx)
		assert.Equal(t, 5, p.StreakDays)
	})

	t.Run("正常系: lastActiveDate が不正なら 1 から数え直す", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		require.NoError(t, kv.Set(ctx, config.UserProgressKey,
			`{"completedLetters":[],"completedWords":[],"quizScores":{},"flashcardProgress":{},"lastActiveDate":"garbage","totalStudyTime":0,"achievements":[],"streakDays":7}`))
		store := newTestStore(kv, today)

		store.UpdateStreak(ctx)

		p := store.Load(ctx)
		assert.Equal(t, 1, p.StreakDays)
	})
}

// --- AddStudyTime / Reset ---

func TestProgressStore_AddStudyTime(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryStore(), baseTime)

	store.AddStudyTime(ctx, 120)
	store.AddStudyTime(ctx, 30)
	store.AddStudyTime(ctx, 0)
	store.AddStudyTime(ctx, -5)

	p := store.Load(ctx)
	assert.Equal(t, int64(150), p.TotalStudyTime)
}

func TestProgressStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryStore(), baseTime)

	store.MarkLetterCompleted(ctx, "v1")
	store.SaveQuizScore(ctx, "letters_vowels", 4)

	store.Reset(ctx)

	p := store.Load(ctx)
	assert.Empty(t, p.CompletedLetterIDs)
	assert.Empty(t, p.QuizScores)
	assert.Equal(t, 0, p.StreakDays)
}

// --- 障害時の no-throw 保証 ---

func TestProgressStore_StorageFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 書き込み失敗でも panic せず更新は失われる", func(t *testing.T) {
		mockKV := new(mocks.KVStore)
		mockKV.On("Get", mock.Anything, config.UserProgressKey).Return("", false, nil)
		mockKV.On("Set", mock.Anything, config.UserProgressKey, mock.Anything).Return(errors.New("disk full"))
		store := newTestStore(mockKV, baseTime)

		assert.NotPanics(t, func() {
			store.SaveQuizScore(ctx, "letters_vowels", 4)
		})

		// 次の Load では何も保存されていない
		p := store.Load(ctx)
		assert.Empty(t, p.QuizScores)
		mockKV.AssertExpectations(t)
	})

	t.Run("正常系: 全更新系メソッドが障害時も戻ってくる", func(t *testing.T) {
		mockKV := new(mocks.KVStore)
		mockKV.On("Get", mock.Anything, mock.Anything).Return("", false, errors.New("read error"))
		mockKV.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("write error"))
		mockKV.On("Delete", mock.Anything, mock.Anything).Return(errors.New("delete error"))
		store := newTestStore(mockKV, baseTime)

		assert.NotPanics(t, func() {
			store.MarkLetterCompleted(ctx, "v1")
			store.MarkWordCompleted(ctx, "w1")
			store.SaveQuizScore(ctx, "k", 1)
			store.UpdateFlashcardProgress(ctx, "w1", 0.5)
			store.UpdateStreak(ctx)
			store.AddStudyTime(ctx, 10)
			store.Reset(ctx)
		})
	})
}

// --- 並行書き込み ---

func TestProgressStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryStore(), baseTime)

	var wg sync.WaitGroup
	keys := []string{"letters_vowels", "words_family", "letters_consonants"}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.SaveQuizScore(ctx, keys[i%len(keys)], i%5+1)
		}(i)
	}
	wg.Wait()

	// キー単位マージにより全キーが残り、各キーは観測した最大値を保持する
	p := store.Load(ctx)
	for _, k := range keys {
		assert.Equal(t, 5, p.QuizScores[k], "key %s", k)
	}
}
