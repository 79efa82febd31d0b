// internal/quiz/session.go
package quiz

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"go_malayalam_trainer/internal/model"
)

// セッション状態
const (
	StateAsking   = "asking"
	StateAnswered = "answered"
	StateComplete = "complete"
)

// 出題プールが 4 件未満のときの誤答選択肢フォールバック
var distractorFallbacks = [3]string{"ka", "ma", "pa"}

// Item はクイズの出題元となるコンテンツ 1 件です。
// 文字なら Prompt=マラヤーラム文字 / Answer=音訳、単語なら Prompt=単語 / Answer=音訳。
type Item struct {
	ID     string
	Prompt string
	Answer string
}

// Question は生成済みの設問です。生成後は変更されません。
type Question struct {
	Prompt  string
	Correct string
	Options []string
}

// Config はセッション生成パラメータです
type Config struct {
	QuizKey       string
	QuestionCount int
	// AdvanceDelay は回答後に次の設問へ自動遷移するまでの時間。
	// 0 の場合は自動遷移せず、Advance の明示呼び出しで進みます。
	AdvanceDelay time.Duration
	// Rand は選択肢シャッフル用の乱数源。テストでは固定シードを渡します
	Rand *rand.Rand
}

// Session は 1 回のクイズの状態機械です。
// asking → answered →（自動または明示の advance）→ 次の asking、
// 最終設問の回答後は complete で終端します。
type Session struct {
	mu        sync.Mutex
	id        uuid.UUID
	quizKey   string
	questions []Question

	index       int
	state       string
	selected    string
	isCorrect   bool
	score       int
	advance     time.Duration
	timer       *time.Timer
	gen         int
	completedAt time.Time
}

// NewSession はコンテンツから設問を生成してセッションを開始します。
// items が空の場合は model.ErrInvalidInput を返します。
func NewSession(cfg Config, items []Item) (*Session, error) {
	if len(items) == 0 {
		return nil, model.NewAppError("INVALID_INPUT", "No content available for quiz", "kind", model.ErrInvalidInput)
	}

	count := cfg.QuestionCount
	if count <= 0 {
		count = 5
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Session{
		id:        uuid.New(),
		quizKey:   cfg.QuizKey,
		questions: generateQuestions(items, count, rnd),
		state:     StateAsking,
		advance:   cfg.AdvanceDelay,
	}, nil
}

// generateQuestions は先頭 count 件から設問を作ります。
// 設問 i の誤答は (i+1, i+2, i+3) mod len の音訳から取り、プールが小さく
// 重複してしまう場合は固定フォールバック文字列を使います。
func generateQuestions(items []Item, count int, rnd *rand.Rand) []Question {
	if count > len(items) {
		count = len(items)
	}

	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		correct := items[i].Answer
		options := []string{correct}
		seen := map[string]bool{correct: true}

		for n := 1; n <= 3; n++ {
			candidate := items[(i+n)%len(items)].Answer
			if seen[candidate] {
				candidate = distractorFallbacks[n-1]
			}
			seen[candidate] = true
			options = append(options, candidate)
		}

		rnd.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		questions = append(questions, Question{
			Prompt:  items[i].Prompt,
			Correct: correct,
			Options: options,
		})
	}
	return questions
}

// ID はセッション識別子を返します
func (s *Session) ID() uuid.UUID {
	return s.id
}

// QuizKey は進捗保存用のスコアキーを返します
func (s *Session) QuizKey() string {
	return s.quizKey
}

// Answer は現在の設問に回答します。判定は完全一致です。
// asking 状態以外での呼び出しは no-op で、最初の選択が不変に保持されます。
func (s *Session) Answer(option string) model.QuizStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAsking {
		return s.stateLocked()
	}

	s.selected = option
	s.isCorrect = option == s.questions[s.index].Correct
	if s.isCorrect {
		s.score++
	}
	s.state = StateAnswered

	if s.advance > 0 {
		// Stop が間に合わず発火したコールバックが、手動 Advance 後の
		// 次の設問を進めてしまわないよう、予約時点の世代を照合する
		gen := s.gen
		s.timer = time.AfterFunc(s.advance, func() {
			s.autoAdvance(gen)
		})
	}

	return s.stateLocked()
}

// Advance は answered 状態から次の設問（または complete）へ明示的に進めます。
// 自動遷移タイマーが残っていれば停止します。それ以外の状態では no-op です。
func (s *Session) Advance() model.QuizStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnswered {
		return s.stateLocked()
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.advanceLocked()
	return s.stateLocked()
}

// autoAdvance は自動遷移タイマーのコールバックです。
// 予約時点の世代と一致しない場合は、Stop が間に合わなかった
// 古い発火とみなして何もしません。
func (s *Session) autoAdvance(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.advanceLocked()
}

// advanceLocked はロック取得済みの前提で呼び出します
func (s *Session) advanceLocked() {
	if s.state != StateAnswered {
		return
	}
	s.gen++
	if s.index < len(s.questions)-1 {
		s.index++
		s.selected = ""
		s.isCorrect = false
		s.state = StateAsking
	} else {
		s.state = StateComplete
		s.completedAt = time.Now()
	}
	s.timer = nil
}

// Score は現在のスコアを返します
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// IsComplete はセッションが終端状態かどうかを返します
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateComplete
}

// Close は自動遷移タイマーを停止します。終了時に呼び出してください
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// State は現在状態のスナップショットを返します
func (s *Session) State() model.QuizStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() model.QuizStateResponse {
	resp := model.QuizStateResponse{
		QuizID:        s.id.String(),
		QuizKey:       s.quizKey,
		State:         s.state,
		QuestionIndex: s.index,
		QuestionCount: len(s.questions),
		Score:         s.score,
	}

	if s.state == StateComplete {
		return resp
	}

	q := s.questions[s.index]
	view := &model.QuizQuestionView{
		Prompt:  q.Prompt,
		Options: append([]string(nil), q.Options...),
	}
	if s.state == StateAnswered {
		// 正解文字列は回答後にのみ開示する
		view.Correct = q.Correct
		resp.Selected = s.selected
		correct := s.isCorrect
		resp.IsCorrect = &correct
	}
	resp.Question = view
	return resp
}
