package store

import (
	"errors"
	"testing"
	"time"

	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/util"

	"golang.org/x/crypto/bcrypt"
)

func TestUserCreateAndVerify(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)

	user, err := users.Create("alice", "Sup3rSecret", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("role = %q", user.Role)
	}

	verified, ok := users.VerifyLogin("alice", "Sup3rSecret")
	if !ok {
		t.Error("correct password should verify")
	}
	if verified.LastLoginAt == nil {
		t.Error("successful login should stamp last_login_at")
	}
	reloaded, err := users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.LastLoginAt == nil {
		t.Error("last_login_at should be persisted")
	}
	if _, ok := users.VerifyLogin("alice", "wrong"); ok {
		t.Error("wrong password should not verify")
	}
	if _, ok := users.VerifyLogin("nobody", "Sup3rSecret"); ok {
		t.Error("unknown user should not verify")
	}

	if _, err := users.Create("alice", "Other1234", models.RoleViewer); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate name should be ErrNameTaken, got %v", err)
	}
	if _, err := users.Create("bob", "pw", "owner"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown role should be invalid, got %v", err)
	}
}

func TestVerifyLoginMigratesLegacyHash(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)

	legacy, _ := bcrypt.GenerateFromPassword([]byte("OldScheme123"), bcrypt.MinCost)
	user := models.User{Name: "legacy", PasswordHash: string(legacy), Role: models.RoleViewer}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed legacy user: %v", err)
	}

	if _, ok := users.VerifyLogin("legacy", "OldScheme123"); !ok {
		t.Fatal("legacy hash should verify")
	}

	// the login rehashed the password with the current scheme
	reloaded, _ := users.FindByID(user.ID)
	if util.NeedsRehash(reloaded.PasswordHash) {
		t.Error("hash should have been migrated off bcrypt")
	}
	if _, ok := users.VerifyLogin("legacy", "OldScheme123"); !ok {
		t.Error("password should still verify after migration")
	}
}

func TestUpdatePasswordAndSetRole(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)

	user, _ := users.Create("carol", "FirstPass1", models.RoleViewer)

	if err := users.UpdatePassword(user.ID, "SecondPass2"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, ok := users.VerifyLogin("carol", "FirstPass1"); ok {
		t.Error("old password should no longer verify")
	}
	if _, ok := users.VerifyLogin("carol", "SecondPass2"); !ok {
		t.Error("new password should verify")
	}

	promoted, err := users.SetRole(user.ID, models.RoleSuperadmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if !promoted.IsSuperadmin() {
		t.Error("user should be superadmin")
	}
	if _, err := users.SetRole(9999, models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user should be ErrNotFound, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)
	sessions := NewSessionStore(db)

	user, _ := users.Create("dave", "Password123", models.RoleViewer)

	session, err := sessions.Create(user.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := sessions.Get(session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.User.ID != user.ID {
		t.Errorf("session user = %d, want %d", got.User.ID, user.ID)
	}

	if err := sessions.Revoke(session.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := sessions.Get(session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoked session should be ErrNotFound, got %v", err)
	}

	deleted, err := sessions.DeleteExpired()
	if err != nil || deleted != 1 {
		t.Errorf("expected 1 cleaned-up session, got %d, %v", deleted, err)
	}
}

func TestAdminRequests(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)
	requests := NewAdminRequestStore(db)

	user, _ := users.Create("erin", "Password123", models.RoleViewer)

	first, err := requests.Create(user.ID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	// a second pending request is not duplicated
	again, err := requests.Create(user.ID)
	if err != nil || again.ID != first.ID {
		t.Errorf("pending request should be reused, got %+v, %v", again, err)
	}

	resolved, err := requests.SetStatus(first.ID, models.AdminRequestApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resolved.Status != models.AdminRequestApproved {
		t.Errorf("status = %q", resolved.Status)
	}

	// approval promotes the user
	promoted, _ := users.FindByID(user.ID)
	if !promoted.CanAdmin() {
		t.Error("approved user should be admin")
	}

	if _, err := requests.SetStatus(first.ID, "bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bogus status should be invalid, got %v", err)
	}
}
