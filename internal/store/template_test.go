package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
)

func TestTemplateKey(t *testing.T) {
	cases := map[string]string{
		"receipt":       "templates/receipt.dotx",
		"receipt.dotx":  "templates/receipt.dotx",
		" receipt-v2 ":  "templates/receipt-v2.dotx",
	}
	for in, want := range cases {
		if got := TemplateKey(in); got != want {
			t.Errorf("TemplateKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetAsDefaultExclusive(t *testing.T) {
	db := newTestDB(t)
	templates := NewTemplateStore(db, newFakeObjects())

	a, _ := templates.Create("a")
	b, _ := templates.Create("b")

	if _, err := templates.SetAsDefault(a.ID); err != nil {
		t.Fatalf("set a default: %v", err)
	}
	if _, err := templates.SetAsDefault(b.ID); err != nil {
		t.Fatalf("set b default: %v", err)
	}

	var defaults int64
	if err := db.Model(&models.Template{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
		t.Fatalf("count defaults: %v", err)
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}

	current, err := templates.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if current.ID != b.ID {
		t.Errorf("default should be b, got %d", current.ID)
	}
}

func TestDefaultWithoutAny(t *testing.T) {
	db := newTestDB(t)
	templates := NewTemplateStore(db, newFakeObjects())

	if _, err := templates.Default(); !errors.Is(err, ErrNoDefaultTemplate) {
		t.Errorf("expected ErrNoDefaultTemplate, got %v", err)
	}
}

func TestRemoveDefaultTemplate(t *testing.T) {
	db := newTestDB(t)
	templates := NewTemplateStore(db, newFakeObjects())

	tpl, _ := templates.Create("a")
	_, _ = templates.SetAsDefault(tpl.ID)

	if err := templates.Remove(tpl.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := templates.Default(); !errors.Is(err, ErrNoDefaultTemplate) {
		t.Errorf("removing the default leaves none, got %v", err)
	}
}

func TestCreateUploadURL(t *testing.T) {
	db := newTestDB(t)
	templates := NewTemplateStore(db, newFakeObjects())

	url, key, err := templates.CreateUploadURL(context.Background(), "receipt-2024")
	if err != nil {
		t.Fatalf("upload url: %v", err)
	}
	if key != "templates/receipt-2024.dotx" {
		t.Errorf("unexpected key %q", key)
	}
	if !strings.Contains(url, key) {
		t.Errorf("url %q should reference %q", url, key)
	}

	if _, _, err := templates.CreateUploadURL(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name should be invalid, got %v", err)
	}
}

func TestSyncOld(t *testing.T) {
	db := newTestDB(t)
	objects := newFakeObjects()
	templates := NewTemplateStore(db, objects)

	// one object already has a row, one is orphaned, one is not a template
	existing, _ := templates.Create("known")
	objects.objects[existing.Key] = []byte("x")
	objects.objects["templates/orphan.dotx"] = []byte("y")
	objects.objects["sponsor-pdf/1/1.pdf"] = []byte("z")

	created, err := templates.SyncOld(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 backfilled row, got %d", created)
	}

	all, _ := templates.All()
	if len(all) != 2 {
		t.Errorf("expected 2 template rows, got %d", len(all))
	}

	// a second run is a no-op
	created, err = templates.SyncOld(context.Background())
	if err != nil || created != 0 {
		t.Errorf("second sync should backfill nothing, got %d, %v", created, err)
	}
}
