package models

import (
	"time"

	"gorm.io/gorm"
)

// Sponsor is a donor tracked by the foundation.
type Sponsor struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255;index;not null" json:"name"`
	Address string `gorm:"size:512;not null" json:"address"`

	Donations []Donation `gorm:"foreignKey:SponsorID" json:"donations,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
