package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"

	"gorm.io/gorm"
)

// SponsorStore manages sponsors and their donations.
type SponsorStore struct {
	DB *gorm.DB
}

func NewSponsorStore(db *gorm.DB) *SponsorStore {
	return &SponsorStore{DB: db}
}

// DonationFields carries the caller-supplied values for a new or updated
// donation. AdminID stamps the acting user on the row.
type DonationFields struct {
	Amount   int64
	Currency string
	Year     int
	AdminID  *uint
}

func (f DonationFields) validate() error {
	if f.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !models.ValidCurrency(f.Currency) {
		return fmt.Errorf("%w: currency must be CHF or EUR", ErrInvalidInput)
	}
	if f.Year < 1900 || f.Year > time.Now().Year()+1 {
		return fmt.Errorf("%w: implausible year %d", ErrInvalidInput, f.Year)
	}
	return nil
}

func validateSponsorFields(name, address string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("%w: address is empty", ErrInvalidInput)
	}
	return nil
}

// Create inserts a new sponsor.
func (s *SponsorStore) Create(name, address string) (*models.Sponsor, error) {
	if err := validateSponsorFields(name, address); err != nil {
		return nil, err
	}
	sponsor := models.Sponsor{Name: strings.TrimSpace(name), Address: strings.TrimSpace(address)}
	if err := s.DB.Create(&sponsor).Error; err != nil {
		return nil, fmt.Errorf("create sponsor: %w", err)
	}
	return &sponsor, nil
}

// CreateWithDonation inserts a sponsor and its first donation in one
// transaction; any failure rolls back both rows. The returned sponsor has
// its donations preloaded.
func (s *SponsorStore) CreateWithDonation(name, address string, fields DonationFields) (*models.Sponsor, error) {
	if err := validateSponsorFields(name, address); err != nil {
		return nil, err
	}
	if err := fields.validate(); err != nil {
		return nil, err
	}

	var sponsor models.Sponsor
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sponsor = models.Sponsor{Name: strings.TrimSpace(name), Address: strings.TrimSpace(address)}
		if err := tx.Create(&sponsor).Error; err != nil {
			return fmt.Errorf("create sponsor: %w", err)
		}
		donation := models.Donation{
			SponsorID:        sponsor.ID,
			Amount:           fields.Amount,
			Currency:         fields.Currency,
			Year:             fields.Year,
			CreatedByAdminID: fields.AdminID,
		}
		if err := tx.Create(&donation).Error; err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(sponsor.ID)
}

// Donate inserts a donation for the sponsor. The partial unique index on
// (sponsor_id, year) is the actual uniqueness guarantee; a violation is
// mapped to ErrDuplicateYear so concurrent inserts cannot both succeed.
func (s *SponsorStore) Donate(sponsorID uint, fields DonationFields) (*models.Donation, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}
	if _, err := s.FindByID(sponsorID); err != nil {
		return nil, err
	}

	donation := models.Donation{
		SponsorID:        sponsorID,
		Amount:           fields.Amount,
		Currency:         fields.Currency,
		Year:             fields.Year,
		CreatedByAdminID: fields.AdminID,
	}
	if err := s.DB.Create(&donation).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateYear
		}
		return nil, fmt.Errorf("create donation: %w", err)
	}
	return &donation, nil
}

// HasDonated reports whether the sponsor has a live donation for the year.
// It is a convenience pre-check for the UI; Donate enforces the rule either
// way.
func (s *SponsorStore) HasDonated(sponsorID uint, year int) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Donation{}).
		Where("sponsor_id = ? AND year = ?", sponsorID, year).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count donations: %w", err)
	}
	return count > 0, nil
}

// Update patches the sponsor's name and/or address. A change to either
// clears the cached receipt keys of all its donations, because the receipt
// text embeds both values.
func (s *SponsorStore) Update(id uint, name, address *string) (*models.Sponsor, error) {
	sponsor, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	identityChanged := false
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name is empty", ErrInvalidInput)
		}
		if trimmed != sponsor.Name {
			updates["name"] = trimmed
			identityChanged = true
		}
	}
	if address != nil {
		trimmed := strings.TrimSpace(*address)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: address is empty", ErrInvalidInput)
		}
		if trimmed != sponsor.Address {
			updates["address"] = trimmed
			identityChanged = true
		}
	}

	if len(updates) > 0 {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Sponsor{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return fmt.Errorf("update sponsor: %w", err)
			}
			if identityChanged {
				if err := invalidateDonations(tx, id); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s.FindByID(id)
}

// Remove soft-deletes the sponsor.
func (s *SponsorStore) Remove(id uint) error {
	res := s.DB.Delete(&models.Sponsor{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete sponsor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidateDonations clears the stored receipt key on all live donations of
// the sponsor, forcing regeneration on the next download request.
func (s *SponsorStore) InvalidateDonations(sponsorID uint) error {
	return invalidateDonations(s.DB, sponsorID)
}

func invalidateDonations(tx *gorm.DB, sponsorID uint) error {
	err := tx.Model(&models.Donation{}).
		Where("sponsor_id = ?", sponsorID).
		Update("s3_key", nil).Error
	if err != nil {
		return fmt.Errorf("invalidate donations: %w", err)
	}
	return nil
}

// withDonations preloads live donations ordered by year together with the
// admin users that touched them.
func (s *SponsorStore) withDonations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Donations", func(db *gorm.DB) *gorm.DB {
			return db.Order("year ASC")
		}).
		Preload("Donations.CreatedByAdmin").
		Preload("Donations.UpdatedByAdmin").
		Preload("Donations.DeletedByAdmin")
}

// FindByID returns a live sponsor with donations preloaded.
func (s *SponsorStore) FindByID(id uint) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	if err := s.withDonations(s.DB).First(&sponsor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find sponsor: %w", err)
	}
	return &sponsor, nil
}

// FindByName returns the live sponsor with the exact name.
func (s *SponsorStore) FindByName(name string) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	err := s.withDonations(s.DB).Where("name = ?", name).First(&sponsor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find sponsor by name: %w", err)
	}
	return &sponsor, nil
}

// Search returns live sponsors whose name contains the query,
// case-insensitively.
func (s *SponsorStore) Search(query string) ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	err := s.withDonations(s.DB).
		Where("LOWER(name) LIKE LOWER(?)", "%"+strings.TrimSpace(query)+"%").
		Order("name ASC").
		Find(&sponsors).Error
	if err != nil {
		return nil, fmt.Errorf("search sponsors: %w", err)
	}
	return sponsors, nil
}

// All returns every sponsor including soft-deleted ones.
func (s *SponsorStore) All() ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	err := s.withDonations(s.DB.Unscoped()).Order("name ASC").Find(&sponsors).Error
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return sponsors, nil
}

// AllWithoutDeleted returns only live sponsors.
func (s *SponsorStore) AllWithoutDeleted() ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	err := s.withDonations(s.DB).Order("name ASC").Find(&sponsors).Error
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return sponsors, nil
}

// CountAll counts live sponsors.
func (s *SponsorStore) CountAll() (int64, error) {
	var count int64
	if err := s.DB.Model(&models.Sponsor{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count sponsors: %w", err)
	}
	return count, nil
}

// isUniqueViolation matches the sqlite and generic unique-constraint errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
