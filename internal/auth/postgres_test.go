package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dealdesk.org/internal/rbac"
)

func TestPGFindProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"user_id", "organization_id", "email", "role", "is_admin", "password_hash", "status", "created_at", "updated_at"}
	mock.ExpectQuery("select .* from profiles where user_id=").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("user-1", "org-a", "ana@example.com", "seller", false, "hash", "active", now, now))

	store := NewPGStore(db)
	p, err := store.FindProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FindProfile: %v", err)
	}
	if p.Role != rbac.RoleSeller || p.OrganizationID != "org-a" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGFindProfileMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cols := []string{"user_id", "organization_id", "email", "role", "is_admin", "password_hash", "status", "created_at", "updated_at"}
	mock.ExpectQuery("select .* from profiles where user_id=").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(cols))

	store := NewPGStore(db)
	if _, err := store.FindProfile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPGResourceOrganization(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select organization_id from deals where id=").
		WithArgs("deal-1").
		WillReturnRows(sqlmock.NewRows([]string{"organization_id"}).AddRow("org-b"))

	store := NewPGStore(db)
	owner, err := store.ResourceOrganization(context.Background(), "deals", "deal-1")
	if err != nil {
		t.Fatalf("ResourceOrganization: %v", err)
	}
	if owner != "org-b" {
		t.Fatalf("unexpected owner: %s", owner)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGResourceOrganizationRejectsUnknownTable(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	if _, err := store.ResourceOrganization(context.Background(), "pg_catalog.pg_tables", "x"); err == nil {
		t.Fatal("expected rejection of non-whitelisted table")
	}
}

func TestPGUpdateProfileRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"user_id", "organization_id", "email", "role", "is_admin", "password_hash", "status", "created_at", "updated_at"}
	mock.ExpectQuery("update profiles set role=.* where user_id=.* returning").
		WithArgs("broker", sqlmock.AnyArg(), "user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("user-1", "org-a", "ana@example.com", "broker", false, "hash", "active", now, now))

	store := NewPGStore(db)
	role := rbac.RoleBroker
	p, err := store.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Role: &role})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if p.Role != rbac.RoleBroker {
		t.Fatalf("role not updated: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGDeleteProfileMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from profiles where user_id=").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if err := store.DeleteProfile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
