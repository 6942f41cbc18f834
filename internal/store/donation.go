package store

import (
	"errors"
	"fmt"

	"github.com/oetzilabs/ciftlikpdf/internal/models"

	"gorm.io/gorm"
)

// DonationStore manages donation rows directly (the sponsor store owns the
// create path).
type DonationStore struct {
	DB *gorm.DB
}

func NewDonationStore(db *gorm.DB) *DonationStore {
	return &DonationStore{DB: db}
}

// FindByID returns a live donation.
func (s *DonationStore) FindByID(id uint) (*models.Donation, error) {
	var donation models.Donation
	err := s.DB.
		Preload("CreatedByAdmin").
		Preload("UpdatedByAdmin").
		First(&donation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return &donation, nil
}

// FindBySponsorID returns the sponsor's live donations ordered by year.
func (s *DonationStore) FindBySponsorID(sponsorID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.DB.
		Where("sponsor_id = ?", sponsorID).
		Order("year ASC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return donations, nil
}

// Update patches amount, currency and year of a live donation. Changing the
// year re-checks the one-donation-per-year rule through the unique index.
// Any change clears the cached receipt key since the receipt embeds all
// three values.
func (s *DonationStore) Update(id uint, fields DonationFields) (*models.Donation, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}
	donation, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	err = s.DB.Model(donation).Updates(map[string]interface{}{
		"amount":              fields.Amount,
		"currency":            fields.Currency,
		"year":                fields.Year,
		"s3_key":              nil,
		"updated_by_admin_id": fields.AdminID,
	}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateYear
		}
		return nil, fmt.Errorf("update donation: %w", err)
	}
	return s.FindByID(id)
}

// UpdateAmount changes only the amount, clearing the cached receipt key.
func (s *DonationStore) UpdateAmount(id uint, amount int64, adminID *uint) (*models.Donation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	donation, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	err = s.DB.Model(donation).Updates(map[string]interface{}{
		"amount":              amount,
		"s3_key":              nil,
		"updated_by_admin_id": adminID,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update donation amount: %w", err)
	}
	return s.FindByID(id)
}

// MarkAsDeleted soft-deletes the donation and stamps the acting admin.
func (s *DonationStore) MarkAsDeleted(id uint, adminID *uint) error {
	donation, err := s.FindByID(id)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(donation).Update("deleted_by_admin_id", adminID).Error; err != nil {
			return fmt.Errorf("stamp deleting admin: %w", err)
		}
		if err := tx.Delete(donation).Error; err != nil {
			return fmt.Errorf("delete donation: %w", err)
		}
		return nil
	})
}

// SetS3Key persists the generated receipt's storage key.
func (s *DonationStore) SetS3Key(id uint, key string) error {
	res := s.DB.Model(&models.Donation{}).Where("id = ?", id).Update("s3_key", key)
	if res.Error != nil {
		return fmt.Errorf("set s3 key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearS3Key removes the stored receipt key, forcing regeneration.
func (s *DonationStore) ClearS3Key(id uint) error {
	res := s.DB.Model(&models.Donation{}).Where("id = ?", id).Update("s3_key", nil)
	if res.Error != nil {
		return fmt.Errorf("clear s3 key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every live donation with its admin users.
func (s *DonationStore) All() ([]models.Donation, error) {
	var donations []models.Donation
	err := s.DB.
		Preload("CreatedByAdmin").
		Preload("UpdatedByAdmin").
		Order("year ASC, sponsor_id ASC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return donations, nil
}

// CountAll counts live donations.
func (s *DonationStore) CountAll() (int64, error) {
	var count int64
	if err := s.DB.Model(&models.Donation{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return count, nil
}
