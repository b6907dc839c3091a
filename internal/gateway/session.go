package gateway

import "sync"

// Session — явное состояние авторизации, передаётся клиенту шлюза при
// конструировании. Никаких глобальных переменных с токеном.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear сбрасывает токен. Вызывается при 401 от шлюза: сессия считается
// истёкшей, дальше требуется повторная аутентификация.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
