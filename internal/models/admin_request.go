package models

import "time"

// Admin request statuses.
const (
	AdminRequestPending  = "pending"
	AdminRequestApproved = "approved"
	AdminRequestDenied   = "denied"
)

// AdminRequest records a viewer asking a superadmin for the admin role.
type AdminRequest struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Status string `gorm:"size:16;index;not null;default:pending" json:"status"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
