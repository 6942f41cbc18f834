package models

import (
	"time"

	"gorm.io/gorm"
)

// Supported donation currencies.
const (
	CurrencyCHF = "CHF"
	CurrencyEUR = "EUR"
)

// Donation is a yearly donation of a sponsor. Amount is stored in whole
// units (the foundation does not track cents on receipts). S3Key, when set,
// points at the generated receipt PDF; a nil key means no receipt exists yet.
//
// The composite unique index keeps at most one live donation per sponsor and
// year; soft-deleted rows are excluded so a deleted donation can be replaced.
type Donation struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SponsorID uint    `gorm:"index;not null;uniqueIndex:idx_donations_sponsor_year,where:deleted_at IS NULL" json:"sponsor_id"`
	Amount    int64   `gorm:"not null" json:"amount"`
	Currency  string  `gorm:"size:8;not null;default:CHF" json:"currency"`
	Year      int     `gorm:"not null;uniqueIndex:idx_donations_sponsor_year" json:"year"`
	S3Key     *string `gorm:"size:255" json:"s3_key,omitempty"`

	CreatedByAdminID *uint `gorm:"index" json:"created_by_admin_id,omitempty"`
	UpdatedByAdminID *uint `json:"updated_by_admin_id,omitempty"`
	DeletedByAdminID *uint `json:"deleted_by_admin_id,omitempty"`

	CreatedByAdmin *User `gorm:"foreignKey:CreatedByAdminID" json:"created_by_admin,omitempty"`
	UpdatedByAdmin *User `gorm:"foreignKey:UpdatedByAdminID" json:"updated_by_admin,omitempty"`
	DeletedByAdmin *User `gorm:"foreignKey:DeletedByAdminID" json:"deleted_by_admin,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ValidCurrency reports whether c is an accepted receipt currency.
func ValidCurrency(c string) bool {
	return c == CurrencyCHF || c == CurrencyEUR
}
