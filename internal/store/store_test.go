package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/pdfconv"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Sponsor{},
		&models.Donation{},
		&models.Template{},
		&models.Session{},
		&models.AdminRequest{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeObjects is an in-memory ObjectStore counting calls, so tests can
// assert that cache hits skip storage and converter work.
type fakeObjects struct {
	objects   map[string][]byte
	downloads int
	uploads   int
	presigns  int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Upload(_ context.Context, key string, body []byte, _ string) error {
	f.uploads++
	f.objects[key] = body
	return nil
}

func (f *fakeObjects) Download(_ context.Context, key string) ([]byte, error) {
	f.downloads++
	body, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object %s", key)
	}
	return body, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	f.presigns++
	return "https://storage.test/" + key + "?signed=1", nil
}

func (f *fakeObjects) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key + "?signed=put", nil
}

// fakeConverter returns a canned PDF and counts conversions.
type fakeConverter struct {
	calls int
	fail  bool
}

func (f *fakeConverter) Convert(_ context.Context, _ pdfconv.ConvertRequest) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("converter unavailable")
	}
	return []byte("%PDF-1.4 fake"), nil
}
