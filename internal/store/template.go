package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/storage"

	"gorm.io/gorm"
)

// templatePrefix is the object-store folder holding receipt templates.
const templatePrefix = "templates/"

// uploadURLTTL bounds how long a presigned template upload stays valid.
const uploadURLTTL = 15 * time.Minute

// TemplateStore manages receipt templates and their storage objects.
type TemplateStore struct {
	DB      *gorm.DB
	Objects storage.ObjectStore
}

func NewTemplateStore(db *gorm.DB, objects storage.ObjectStore) *TemplateStore {
	return &TemplateStore{DB: db, Objects: objects}
}

// TemplateKey builds the storage key for a template name, always under
// templates/ with the .dotx extension.
func TemplateKey(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, ".dotx")
	return templatePrefix + name + ".dotx"
}

// Create inserts a template row for the given name.
func (s *TemplateStore) Create(name string) (*models.Template, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: template name is empty", ErrInvalidInput)
	}
	tpl := models.Template{Key: TemplateKey(name)}
	if err := s.DB.Create(&tpl).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: template %q already exists", ErrInvalidInput, name)
		}
		return nil, fmt.Errorf("create template: %w", err)
	}
	return &tpl, nil
}

// FindByID returns a live template.
func (s *TemplateStore) FindByID(id uint) (*models.Template, error) {
	var tpl models.Template
	if err := s.DB.First(&tpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &tpl, nil
}

// Default returns the current default template, or ErrNoDefaultTemplate.
func (s *TemplateStore) Default() (*models.Template, error) {
	var tpl models.Template
	err := s.DB.Where("is_default = ?", true).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDefaultTemplate
		}
		return nil, fmt.Errorf("find default template: %w", err)
	}
	return &tpl, nil
}

// SetAsDefault makes the template the single default. The clear-then-set
// runs in one transaction, and the partial unique index on is_default rules
// out two defaults even when two calls interleave.
func (s *TemplateStore) SetAsDefault(id uint) (*models.Template, error) {
	if _, err := s.FindByID(id); err != nil {
		return nil, err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Template{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("clear defaults: %w", err)
		}
		if err := tx.Model(&models.Template{}).
			Where("id = ?", id).
			Update("is_default", true).Error; err != nil {
			return fmt.Errorf("set default: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(id)
}

// Remove soft-deletes the template row; the storage object stays so old
// receipts remain reproducible.
func (s *TemplateStore) Remove(id uint) error {
	tpl, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if tpl.IsDefault {
		// a deleted default would silently break PDF generation
		if err := s.DB.Model(tpl).Update("is_default", false).Error; err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
	}
	if err := s.DB.Delete(tpl).Error; err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// All returns all live templates.
func (s *TemplateStore) All() ([]models.Template, error) {
	var tpls []models.Template
	if err := s.DB.Order("key ASC").Find(&tpls).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tpls, nil
}

// CreateUploadURL returns a presigned PUT URL scoped to the template's key.
func (s *TemplateStore) CreateUploadURL(ctx context.Context, name string) (string, string, error) {
	if strings.TrimSpace(name) == "" {
		return "", "", fmt.Errorf("%w: template name is empty", ErrInvalidInput)
	}
	key := TemplateKey(name)
	url, err := s.Objects.PresignPut(ctx, key, uploadURLTTL)
	if err != nil {
		return "", "", fmt.Errorf("presign template upload: %w", err)
	}
	return url, key, nil
}

// Download fetches the template's bytes from storage.
func (s *TemplateStore) Download(ctx context.Context, tpl *models.Template) ([]byte, error) {
	body, err := s.Objects.Download(ctx, tpl.Key)
	if err != nil {
		return nil, fmt.Errorf("download template %s: %w", tpl.Key, err)
	}
	return body, nil
}

// SyncOld reconciles storage objects under templates/ with database rows,
// inserting rows for files uploaded before their record existed. Returns
// the number of rows created.
func (s *TemplateStore) SyncOld(ctx context.Context) (int, error) {
	keys, err := s.Objects.List(ctx, templatePrefix)
	if err != nil {
		return 0, fmt.Errorf("list template objects: %w", err)
	}

	created := 0
	for _, key := range keys {
		if path.Ext(key) != ".dotx" {
			continue
		}
		var count int64
		if err := s.DB.Unscoped().Model(&models.Template{}).
			Where("key = ?", key).
			Count(&count).Error; err != nil {
			return created, fmt.Errorf("check template row: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := s.DB.Create(&models.Template{Key: key}).Error; err != nil {
			return created, fmt.Errorf("backfill template %s: %w", key, err)
		}
		created++
	}
	return created, nil
}
