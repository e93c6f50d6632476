package models

import "time"

// SessionUser — снимок идентичности на момент входа.
type SessionUser struct {
	ID       int      `json:"id"`
	UserType UserType `json:"user_type"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     string   `json:"role"`
}

// Session живёт в in-memory хранилище и привязана к cookie session_id.
// Сброс пароля сессию не создаёт и не трогает — пользователь логинится заново.
type Session struct {
	ID        string      `json:"id"`
	User      SessionUser `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}
