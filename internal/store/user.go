package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"gorm.io/gorm"
)

// UserStore manages dashboard accounts.
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

func validRole(role string) bool {
	switch role {
	case models.RoleViewer, models.RoleAdmin, models.RoleSuperadmin:
		return true
	}
	return false
}

// Create registers a user with the given role, hashing the password.
func (s *UserStore) Create(name, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidInput)
	}
	if role == "" {
		role = models.RoleViewer
	}
	if !validRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user := models.User{Name: name, PasswordHash: hash, Role: role}
	if err := s.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// FindByID returns a live user.
func (s *UserStore) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// FindByName returns a live user by exact name.
func (s *UserStore) FindByName(name string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("name = ?", strings.TrimSpace(name)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by name: %w", err)
	}
	return &user, nil
}

// VerifyLogin checks the password, returning the user only on success. A
// matching legacy bcrypt hash is transparently rehashed with the current
// scheme, and the login timestamp is stamped.
func (s *UserStore) VerifyLogin(name, password string) (*models.User, bool) {
	user, err := s.FindByName(name)
	if err != nil {
		return nil, false
	}
	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, false
	}

	if util.NeedsRehash(user.PasswordHash) {
		if hash, err := util.HashPassword(password); err == nil {
			_ = s.DB.Model(user).Update("password_hash", hash).Error
		}
	}

	now := time.Now()
	if err := s.DB.Model(user).Update("last_login_at", &now).Error; err == nil {
		user.LastLoginAt = &now
	}
	return user, true
}

// UpdatePassword replaces the user's password hash.
func (s *UserStore) UpdatePassword(id uint, password string) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetRole changes the user's role. Authorization (superadmin only) is the
// handler's job.
func (s *UserStore) SetRole(id uint, role string) (*models.User, error) {
	if !validRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	return s.FindByID(id)
}

// All returns all live users.
func (s *UserStore) All() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
