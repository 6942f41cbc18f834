package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles, ordered by privilege.
const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User represents a dashboard account.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:16;index;not null;default:viewer" json:"role"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// CanAdmin reports whether the user may mutate sponsors/donations/templates.
func (u *User) CanAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

// IsSuperadmin reports whether the user may manage other users.
func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}
