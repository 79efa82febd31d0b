// internal/quiz/session_test.go
package quiz

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualConfig は自動遷移なし・固定シードのテスト用設定です
func manualConfig() Config {
	return Config{
		QuizKey:       "letters_vowels",
		QuestionCount: 5,
		AdvanceDelay:  0,
		Rand:          rand.New(rand.NewSource(1)),
	}
}

func testItems() []Item {
	return []Item{
		{ID: "v1", Prompt: "അ", Answer: "a"},
		{ID: "v2", Prompt: "ആ", Answer: "aa"},
		{ID: "v3", Prompt: "ഇ", Answer: "i"},
		{ID: "v4", Prompt: "ഈ", Answer: "ii"},
		{ID: "v5", Prompt: "ഉ", Answer: "u"},
		{ID: "v6", Prompt: "ഊ", Answer: "uu"},
	}
}

func TestNewSession(t *testing.T) {
	t.Run("正常系: 5問が生成される", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		st := s.State()
		assert.Equal(t, StateAsking, st.State)
		assert.Equal(t, 0, st.QuestionIndex)
		assert.Equal(t, 5, st.QuestionCount)
		assert.Equal(t, "letters_vowels", st.QuizKey)
		require.NotNil(t, st.Question)
		assert.Len(t, st.Question.Options, 4)
		// 出題中は正解を開示しない
		assert.Empty(t, st.Question.Correct)
		assert.Nil(t, st.IsCorrect)
	})

	t.Run("正常系: プールが問題数より少なければ全件出題", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems()[:3])
		require.NoError(t, err)
		assert.Equal(t, 3, s.State().QuestionCount)
	})

	t.Run("異常系: 空プールはエラー", func(t *testing.T) {
		_, err := NewSession(manualConfig(), nil)
		assert.Error(t, err)
	})
}

func TestGenerateQuestions(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	t.Run("正常系: 誤答は後続3件の音訳から取られる", func(t *testing.T) {
		qs := generateQuestions(testItems(), 5, rnd)
		require.Len(t, qs, 5)

		q := qs[0]
		assert.Equal(t, "അ", q.Prompt)
		assert.Equal(t, "a", q.Correct)
		assert.ElementsMatch(t, []string{"a", "aa", "i", "ii"}, q.Options)
	})

	t.Run("正常系: 末尾の設問は先頭へ折り返す", func(t *testing.T) {
		qs := generateQuestions(testItems()[:5], 5, rnd)
		q := qs[4]
		assert.Equal(t, "u", q.Correct)
		assert.ElementsMatch(t, []string{"u", "a", "aa", "i"}, q.Options)
	})

	t.Run("正常系: サイズ2のプールでも範囲外参照しない", func(t *testing.T) {
		items := testItems()[:2]
		qs := generateQuestions(items, 5, rnd)
		require.Len(t, qs, 2)

		// 折り返しで重複する誤答はフォールバック文字列になる
		q := qs[0]
		assert.Len(t, q.Options, 4)
		assert.Contains(t, q.Options, "a")
		assert.Contains(t, q.Options, "aa")
		assert.Contains(t, q.Options, "ma")
		assert.Contains(t, q.Options, "pa")
	})

	t.Run("正常系: サイズ1のプールは全誤答がフォールバック", func(t *testing.T) {
		qs := generateQuestions(testItems()[:1], 5, rnd)
		require.Len(t, qs, 1)
		assert.ElementsMatch(t, []string{"a", "ka", "ma", "pa"}, qs[0].Options)
	})

	t.Run("正常系: 同一シードなら生成結果は決定的", func(t *testing.T) {
		qs1 := generateQuestions(testItems(), 5, rand.New(rand.NewSource(42)))
		qs2 := generateQuestions(testItems(), 5, rand.New(rand.NewSource(42)))
		assert.Equal(t, qs1, qs2)
	})
}

func TestSession_Answer(t *testing.T) {
	t.Run("正常系: 正答でスコア加算", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		st := s.Answer("a")
		assert.Equal(t, StateAnswered, st.State)
		assert.Equal(t, "a", st.Selected)
		require.NotNil(t, st.IsCorrect)
		assert.True(t, *st.IsCorrect)
		assert.Equal(t, 1, st.Score)
		// 回答後は正解が開示される
		assert.Equal(t, "a", st.Question.Correct)
	})

	t.Run("正常系: 誤答はスコア不変", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		st := s.Answer("zz")
		assert.Equal(t, StateAnswered, st.State)
		require.NotNil(t, st.IsCorrect)
		assert.False(t, *st.IsCorrect)
		assert.Equal(t, 0, st.Score)
	})

	t.Run("正常系: 再回答は no-op（最初の選択が不変）", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		s.Answer("zz")
		st := s.Answer("a")

		assert.Equal(t, "zz", st.Selected)
		assert.Equal(t, 0, st.Score)
	})

	t.Run("正常系: 判定は完全一致で大文字小文字を区別する", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		st := s.Answer("A")
		require.NotNil(t, st.IsCorrect)
		assert.False(t, *st.IsCorrect)
	})
}

func TestSession_Advance(t *testing.T) {
	t.Run("正常系: 回答後に次の設問へ進む", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		s.Answer("a")
		st := s.Advance()

		assert.Equal(t, StateAsking, st.State)
		assert.Equal(t, 1, st.QuestionIndex)
		assert.Empty(t, st.Selected)
		assert.Nil(t, st.IsCorrect)
	})

	t.Run("正常系: 未回答での Advance は no-op", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		st := s.Advance()
		assert.Equal(t, StateAsking, st.State)
		assert.Equal(t, 0, st.QuestionIndex)
	})

	t.Run("正常系: 最終設問の回答後は complete で終端", func(t *testing.T) {
		s, err := NewSession(manualConfig(), testItems())
		require.NoError(t, err)

		answers := []string{"a", "aa", "i", "ii", "u"}
		for i, ans := range answers {
			st := s.Answer(ans)
			require.NotNil(t, st.IsCorrect)
			assert.True(t, *st.IsCorrect, "question %d", i)
			s.Advance()
		}

		st := s.State()
		assert.Equal(t, StateComplete, st.State)
		assert.Equal(t, 5, st.Score)
		assert.Nil(t, st.Question)
		assert.True(t, s.IsComplete())

		// complete は終端。以降の操作は状態を変えない
		s.Answer("a")
		s.Advance()
		assert.Equal(t, 5, s.Score())
		assert.Equal(t, StateComplete, s.State().State)
	})
}

func TestSession_AutoAdvance(t *testing.T) {
	cfg := manualConfig()
	cfg.AdvanceDelay = 10 * time.Millisecond
	s, err := NewSession(cfg, testItems())
	require.NoError(t, err)
	defer s.Close()

	s.Answer("a")
	assert.Equal(t, StateAnswered, s.State().State)

	assert.Eventually(t, func() bool {
		st := s.State()
		return st.State == StateAsking && st.QuestionIndex == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSession_StaleTimerCallback(t *testing.T) {
	// Stop が間に合わず発火したタイマーのコールバックがロック待ちのまま残り、
	// 手動 Advance と次の回答の後に実行されるケースを再現する。
	// 古い世代の発火は次の設問を進めてはならない
	cfg := manualConfig()
	cfg.AdvanceDelay = time.Hour
	s, err := NewSession(cfg, testItems())
	require.NoError(t, err)
	defer s.Close()

	s.Answer("a")
	staleGen := s.gen
	s.Advance()
	s.Answer("aa")

	s.autoAdvance(staleGen)

	st := s.State()
	assert.Equal(t, StateAnswered, st.State)
	assert.Equal(t, 1, st.QuestionIndex)

	// 現世代の発火は通常どおり進める
	s.autoAdvance(s.gen)
	st = s.State()
	assert.Equal(t, StateAsking, st.State)
	assert.Equal(t, 2, st.QuestionIndex)
}
