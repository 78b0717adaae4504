package models

import "time"

// User is the persisted credential record. PasswordHash never leaves the
// server; hand PublicUser to callers instead.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// PublicUser is the caller-facing view of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips the credential material from u.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
