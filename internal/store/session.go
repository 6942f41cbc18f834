package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStore manages opaque cookie sessions (the v2 auth strategy).
type SessionStore struct {
	DB *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{DB: db}
}

// Create issues a session for the user with the given lifetime.
func (s *SessionStore) Create(userID uint, ttl time.Duration) (*models.Session, error) {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// Get returns the session with its user if it is neither revoked nor
// expired.
func (s *SessionStore) Get(id string) (*models.Session, error) {
	var session models.Session
	err := s.DB.Preload("User").
		Where("id = ? AND revoked = ? AND expires_at > ?", id, false, time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Revoke marks the session unusable.
func (s *SessionStore) Revoke(id string) error {
	res := s.DB.Model(&models.Session{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("revoke session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired hard-deletes expired or revoked sessions; they carry no
// history worth keeping.
func (s *SessionStore) DeleteExpired() (int64, error) {
	res := s.DB.Where("expires_at <= ? OR revoked = ?", time.Now(), true).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
