package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		Provider:     model.ProviderManual,
	}

	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.Image != model.DefaultAvatar {
		t.Errorf("Create() Image = %q, want default %q", user.Image, model.DefaultAvatar)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dupe@example.com", "first")

	duplicate := &model.User{
		Email:    "dupe@example.com",
		Username: "second",
		Provider: model.ProviderManual,
	}
	err := db.Users().Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_DuplicateProviderID(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{
		Email:      "g1@example.com",
		Username:   "g1",
		Provider:   model.ProviderOAuth,
		ProviderID: "google-123",
	}
	if err := db.Users().Create(context.Background(), first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &model.User{
		Email:      "g2@example.com",
		Username:   "g2",
		Provider:   model.ProviderOAuth,
		ProviderID: "google-123",
	}
	err := db.Users().Create(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_EmptyProviderIDsDoNotCollide(t *testing.T) {
	db := newTestDB(t)

	// Manual accounts have no provider_id; stored as NULL, two of them
	// must not trip the UNIQUE constraint.
	createTestUser(t, db, "m1@example.com", "m1")
	createTestUser(t, db, "m2@example.com", "m2")
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob@example.com", "bob")

	got, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "bob@example.com" {
		t.Errorf("GetByID() Email = %q, want %q", got.Email, "bob@example.com")
	}
	if got.Provider != model.ProviderManual {
		t.Errorf("GetByID() Provider = %q, want %q", got.Provider, model.ProviderManual)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "carol@example.com", "carol")

	got, err := db.Users().GetByEmail(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", got.ID, created.ID)
	}
}

func TestUserGetByEmailOrProviderID(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:      "oauth@example.com",
		Username:   "oauth-user",
		Provider:   model.ProviderOAuth,
		ProviderID: "google-999",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Match by provider id even with an email the store has never seen —
	// the account changed its email on the provider side.
	got, err := db.Users().GetByEmailOrProviderID(context.Background(), "new-email@example.com", "google-999")
	if err != nil {
		t.Fatalf("GetByEmailOrProviderID() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetByEmailOrProviderID() ID = %q, want %q", got.ID, user.ID)
	}

	// Match by email alone.
	got, err = db.Users().GetByEmailOrProviderID(context.Background(), "oauth@example.com", "unknown")
	if err != nil {
		t.Fatalf("GetByEmailOrProviderID() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetByEmailOrProviderID() ID = %q, want %q", got.ID, user.ID)
	}

	_, err = db.Users().GetByEmailOrProviderID(context.Background(), "nobody@example.com", "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmailOrProviderID() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "dave@example.com", "dave")

	err := db.Users().UpdateProfile(context.Background(), created.ID, "david", "/avatars/d.png")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "david" {
		t.Errorf("Username = %q, want %q", got.Username, "david")
	}
	if got.Image != "/avatars/d.png" {
		t.Errorf("Image = %q, want %q", got.Image, "/avatars/d.png")
	}
}

func TestUserUpdateProfile_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().UpdateProfile(context.Background(), "missing", "x", "y")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}
