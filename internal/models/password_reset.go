package models

import "time"

// PasswordResetToken — одноразовый токен сброса пароля.
// В базе хранится только sha256-хеш, сырой токен уходит в письмо.
// Email и FullName — снимок на момент выдачи, чтобы не делать второй lookup
// при отправке уведомления.
type PasswordResetToken struct {
	ID        int64      `json:"id"`
	UserID    int        `json:"user_id"`
	UserType  UserType   `json:"user_type"`
	TokenHash string     `json:"-"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Valid — токен ещё не использован и не истёк.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
