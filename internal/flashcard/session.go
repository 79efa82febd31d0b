// internal/flashcard/session.go
package flashcard

import (
	"sync"

	"github.com/google/uuid"

	"go_malayalam_trainer/internal/model"
)

// Session はフラッシュカードの閲覧カーソルです。
// カーソルは両端で飽和し（折り返さない）、移動のたびに表裏は表に戻ります。
type Session struct {
	mu      sync.Mutex
	id      uuid.UUID
	cards   []model.Word
	index   int
	flipped bool
}

// NewSession はカード一覧からセッションを開始します。
// cards が空の場合は model.ErrInvalidInput を返します。
func NewSession(cards []model.Word) (*Session, error) {
	if len(cards) == 0 {
		return nil, model.NewAppError("INVALID_INPUT", "No cards available for flashcards", "category", model.ErrInvalidInput)
	}
	return &Session{
		id:    uuid.New(),
		cards: append([]model.Word(nil), cards...),
	}, nil
}

// ID はセッション識別子を返します
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Next は次のカードへ進みます。末尾では no-op です。
// いずれの場合も表裏は表に戻ります。
func (s *Session) Next() model.FlashcardStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < len(s.cards)-1 {
		s.index++
	}
	s.flipped = false
	return s.stateLocked()
}

// Previous は前のカードへ戻ります。先頭では no-op です。
// いずれの場合も表裏は表に戻ります。
func (s *Session) Previous() model.FlashcardStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index > 0 {
		s.index--
	}
	s.flipped = false
	return s.stateLocked()
}

// Flip はカードの表裏を切り替えます
func (s *Session) Flip() model.FlashcardStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flipped = !s.flipped
	return s.stateLocked()
}

// Current は現在のカードを返します
func (s *Session) Current() model.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[s.index]
}

// State は現在状態のスナップショットを返します
func (s *Session) State() model.FlashcardStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() model.FlashcardStateResponse {
	return model.FlashcardStateResponse{
		SessionID: s.id.String(),
		Index:     s.index,
		Total:     len(s.cards),
		Flipped:   s.flipped,
		Card:      s.cards[s.index],
	}
}
