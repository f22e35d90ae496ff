package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dealdesk.org/internal/market"
)

var companyCols = []string{"id", "organization_id", "name", "sector", "region", "revenue", "description", "created_at", "updated_at"}

func TestCreateCompanyAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into companies").
		WithArgs(sqlmock.AnyArg(), "org-a", "Acme Foundry", "manufacturing", "EU", int64(1200000), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := New(db)
	c := &market.Company{OrganizationID: "org-a", Name: "Acme Foundry", Sector: "manufacturing", Region: "EU", Revenue: 1200000}
	if err := store.CreateCompany(context.Background(), c); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	if c.ID == "" {
		t.Fatal("id not assigned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateCompanyValidation(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	store := New(db)

	err := store.CreateCompany(context.Background(), &market.Company{OrganizationID: "org-a"})
	if !errors.Is(err, market.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestGetCompanyMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select .* from companies where id=").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(companyCols))

	store := New(db)
	if _, err := store.GetCompany(context.Background(), "ghost"); !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateCompanyBuildsSetClause(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("update companies set name=.*, revenue=.* where id=.* returning").
		WithArgs("New Name", int64(99), sqlmock.AnyArg(), "c1").
		WillReturnRows(sqlmock.NewRows(companyCols).
			AddRow("c1", "org-a", "New Name", "tech", "US", 99, "", now, now))

	store := New(db)
	name := "New Name"
	rev := int64(99)
	c, err := store.UpdateCompany(context.Background(), "c1", market.CompanyUpdate{Name: &name, Revenue: &rev})
	if err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}
	if c.Name != "New Name" || c.Revenue != 99 {
		t.Fatalf("update not applied: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchCompaniesScopesToOrganization(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("select .* from companies where organization_id=.* and .*lower\\(name\\) like").
		WithArgs("org-a", "%foundry%").
		WillReturnRows(sqlmock.NewRows(companyCols).
			AddRow("c1", "org-a", "Acme Foundry", "manufacturing", "EU", 1, "", now, now))

	store := New(db)
	out, err := store.SearchCompanies(context.Background(), "org-a", "Foundry", 10)
	if err != nil {
		t.Fatalf("SearchCompanies: %v", err)
	}
	if len(out) != 1 || out[0].ID != "c1" {
		t.Fatalf("unexpected results: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteDealMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from deals where id=").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := New(db)
	if err := store.DeleteDeal(context.Background(), "ghost"); !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

var ndaCols = []string{"id", "organization_id", "deal_id", "status", "signed_by", "signed_at", "created_at", "updated_at"}

func TestSignNDA(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("update ndas set status=.* where id=.* and status=.* returning").
		WithArgs("signed", "user-1", sqlmock.AnyArg(), "n1", "draft").
		WillReturnRows(sqlmock.NewRows(ndaCols).
			AddRow("n1", "org-a", "d1", "signed", "user-1", now, now, now))

	store := New(db)
	n, err := store.SignNDA(context.Background(), "n1", "user-1")
	if err != nil {
		t.Fatalf("SignNDA: %v", err)
	}
	if n.Status != market.NDAStatusSigned || n.SignedBy != "user-1" || n.SignedAt == nil {
		t.Fatalf("sign not applied: %+v", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignNDATwiceConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	// Conditional update matches nothing, follow-up read finds a signed row.
	mock.ExpectQuery("update ndas set status=.* where id=.* and status=.* returning").
		WithArgs("signed", "user-2", sqlmock.AnyArg(), "n1", "draft").
		WillReturnRows(sqlmock.NewRows(ndaCols))
	mock.ExpectQuery("select .* from ndas where id=").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows(ndaCols).
			AddRow("n1", "org-a", "d1", "signed", "user-1", now, now, now))

	store := New(db)
	if _, err := store.SignNDA(context.Background(), "n1", "user-2"); !errors.Is(err, market.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}
