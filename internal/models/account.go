package models

import "time"

// UserType различает два независимых пространства аккаунтов.
type UserType string

const (
	UserTypeStaff  UserType = "staff"
	UserTypeMember UserType = "member"
)

// ParseUserType валидирует discriminator из запроса.
func ParseUserType(s string) (UserType, bool) {
	switch UserType(s) {
	case UserTypeStaff:
		return UserTypeStaff, true
	case UserTypeMember:
		return UserTypeMember, true
	default:
		return "", false
	}
}

type Account struct {
	ID           int       `json:"id"`
	UserType     UserType  `json:"user_type"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // staff: admin|trainer|reception, у членов клуба всегда member
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
