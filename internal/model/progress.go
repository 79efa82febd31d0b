// internal/model/progress.go
package model

import "time"

// UserProgress は永続化される唯一の可変エンティティです。
// JSON のキー名は永続化レコードのレイアウト（モバイル版と互換）に合わせています。
type UserProgress struct {
	CompletedLetterIDs []string           `json:"completedLetters"`
	CompletedWordIDs   []string           `json:"completedWords"`
	QuizScores         map[string]int     `json:"quizScores"`
	FlashcardProgress  map[string]float64 `json:"flashcardProgress"`
	LastActiveDate     string             `json:"lastActiveDate"` // RFC 3339
	TotalStudyTime     int64              `json:"totalStudyTime"` // 秒
	Achievements       []string           `json:"achievements"`
	StreakDays         int                `json:"streakDays"`
}

// DefaultUserProgress は初回起動時（レコード未作成）のデフォルト値を返します
func DefaultUserProgress(now time.Time) *UserProgress {
	return &UserProgress{
		CompletedLetterIDs: []string{},
		CompletedWordIDs:   []string{},
		QuizScores:         map[string]int{},
		FlashcardProgress:  map[string]float64{},
		LastActiveDate:     now.Format(time.RFC3339),
		TotalStudyTime:     0,
		Achievements:       []string{},
		StreakDays:         0,
	}
}

// Clone はスナップショット公開用のディープコピーを返します
func (p *UserProgress) Clone() *UserProgress {
	c := &UserProgress{
		CompletedLetterIDs: append([]string{}, p.CompletedLetterIDs...),
		CompletedWordIDs:   append([]string{}, p.CompletedWordIDs...),
		QuizScores:         make(map[string]int, len(p.QuizScores)),
		FlashcardProgress:  make(map[string]float64, len(p.FlashcardProgress)),
		LastActiveDate:     p.LastActiveDate,
		TotalStudyTime:     p.TotalStudyTime,
		Achievements:       append([]string{}, p.Achievements...),
		StreakDays:         p.StreakDays,
	}
	for k, v := range p.QuizScores {
		c.QuizScores[k] = v
	}
	for k, v := range p.FlashcardProgress {
		c.FlashcardProgress[k] = v
	}
	return c
}

// HasCompletedLetter は文字が学習済みかどうかを返します
func (p *UserProgress) HasCompletedLetter(letterID string) bool {
	for _, id := range p.CompletedLetterIDs {
		if id == letterID {
			return true
		}
	}
	return false
}

// HasCompletedWord は単語が学習済みかどうかを返します
func (p *UserProgress) HasCompletedWord(wordID string) bool {
	for _, id := range p.CompletedWordIDs {
		if id == wordID {
			return true
		}
	}
	return false
}

// 進捗更新リクエストDTO
type SaveQuizScoreRequest struct {
	Score int `json:"score" validate:"min=0"`
}

type UpdateFlashcardProgressRequest struct {
	Value float64 `json:"value"`
}

type AddStudyTimeRequest struct {
	Seconds int64 `json:"seconds" validate:"required,min=1"`
}
