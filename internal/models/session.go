package models

import "time"

// Session stores cookie-backed logins (the v2 auth strategy; the main API
// uses stateless JWTs instead).
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"` // UUID
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Revoked   bool      `gorm:"index;not null" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
