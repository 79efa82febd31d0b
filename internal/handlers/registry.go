// internal/handlers/registry.go
package handlers

import (
	"sync"

	"github.com/google/uuid"

	"go_malayalam_trainer/internal/model"
)

// sessionRegistry はアクティブなセッションを ID で管理します。
// サーバーはモバイル画面ごとのセッションを代理で保持するため、
// 上限を超えた生成は拒否します。
type sessionRegistry[T any] struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]T
	limit    int
}

func newSessionRegistry[T any](limit int) *sessionRegistry[T] {
	return &sessionRegistry[T]{
		sessions: make(map[uuid.UUID]T),
		limit:    limit,
	}
}

func (r *sessionRegistry[T]) add(id uuid.UUID, s T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.sessions) >= r.limit {
		return model.NewAppError("SESSION_LIMIT_REACHED", "Too many active sessions. Close a session and retry.", "", model.ErrConflict)
	}
	r.sessions[id] = s
	return nil
}

func (r *sessionRegistry[T]) get(id uuid.UUID) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry[T]) remove(id uuid.UUID) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

func (r *sessionRegistry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
