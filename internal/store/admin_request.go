package store

import (
	"errors"
	"fmt"

	"github.com/oetzilabs/ciftlikpdf/internal/models"

	"gorm.io/gorm"
)

// AdminRequestStore manages role-elevation requests.
type AdminRequestStore struct {
	DB *gorm.DB
}

func NewAdminRequestStore(db *gorm.DB) *AdminRequestStore {
	return &AdminRequestStore{DB: db}
}

// Create files a pending request for the user; an existing pending request
// is returned instead of duplicated.
func (s *AdminRequestStore) Create(userID uint) (*models.AdminRequest, error) {
	var existing models.AdminRequest
	err := s.DB.Where("user_id = ? AND status = ?", userID, models.AdminRequestPending).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find admin request: %w", err)
	}

	req := models.AdminRequest{UserID: userID, Status: models.AdminRequestPending}
	if err := s.DB.Create(&req).Error; err != nil {
		return nil, fmt.Errorf("create admin request: %w", err)
	}
	return &req, nil
}

// All lists requests, newest first, with their users.
func (s *AdminRequestStore) All() ([]models.AdminRequest, error) {
	var reqs []models.AdminRequest
	err := s.DB.Preload("User").Order("created_at DESC").Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list admin requests: %w", err)
	}
	return reqs, nil
}

// SetStatus resolves a request; approving promotes the user to admin in the
// same transaction.
func (s *AdminRequestStore) SetStatus(id uint, status string) (*models.AdminRequest, error) {
	if status != models.AdminRequestApproved && status != models.AdminRequestDenied {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	var req models.AdminRequest
	if err := s.DB.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin request: %w", err)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&req).Update("status", status).Error; err != nil {
			return fmt.Errorf("update admin request: %w", err)
		}
		if status == models.AdminRequestApproved {
			if err := tx.Model(&models.User{}).
				Where("id = ?", req.UserID).
				Update("role", models.RoleAdmin).Error; err != nil {
				return fmt.Errorf("promote user: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = status
	return &req, nil
}
