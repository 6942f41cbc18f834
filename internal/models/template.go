package models

import (
	"time"

	"gorm.io/gorm"
)

// Template is a DOCX receipt template stored in the object store under
// templates/<name>.dotx. At most one live template is the default; the
// partial unique index makes a second default impossible even under
// concurrent SetAsDefault calls.
type Template struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Key       string `gorm:"size:255;uniqueIndex;not null" json:"key"`
	IsDefault bool   `gorm:"not null;default:false;uniqueIndex:idx_templates_default,where:is_default AND deleted_at IS NULL" json:"default"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
