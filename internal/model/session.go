// internal/model/session.go
package model

// クイズ開始リクエストDTO
type StartQuizRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=letters words"`
	LetterType string `json:"letter_type,omitempty" validate:"omitempty,oneof=vowel consonant number conjunct symbol"`
	Category   string `json:"category,omitempty"`
	Count      int    `json:"count,omitempty" validate:"omitempty,min=1,max=20"`
}

// 回答リクエストDTO
type SubmitAnswerRequest struct {
	Option string `json:"option" validate:"required"`
}

// QuizQuestionView は出題中の設問をクライアントに見せる形です。
// 正解文字列は回答後にのみ含まれます。
type QuizQuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct string   `json:"correct,omitempty"`
}

// QuizStateResponse はクイズセッションの現在状態です
type QuizStateResponse struct {
	QuizID        string            `json:"quiz_id"`
	QuizKey       string            `json:"quiz_key"`
	State         string            `json:"state"` // asking | answered | complete
	QuestionIndex int               `json:"question_index"`
	QuestionCount int               `json:"question_count"`
	Question      *QuizQuestionView `json:"question,omitempty"`
	Selected      string            `json:"selected,omitempty"`
	IsCorrect     *bool             `json:"is_correct,omitempty"`
	Score         int               `json:"score"`
}

// フラッシュカードセッション開始リクエストDTO
type StartFlashcardsRequest struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// FlashcardStateResponse はフラッシュカードセッションの現在状態です
type FlashcardStateResponse struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Flipped   bool   `json:"flipped"`
	Card      Word   `json:"card"`
}
