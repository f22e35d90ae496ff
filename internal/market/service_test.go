package market

import (
	"context"
	"errors"
	"testing"

	"dealdesk.org/internal/auth"
)

func TestCompanyCRUD(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	c := Company{OrganizationID: "org-a", Name: "Acme Foundry", Sector: "manufacturing"}
	if err := s.CreateCompany(ctx, &c); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("create did not stamp fields: %+v", c)
	}

	name := "Acme Holdings"
	got, err := s.UpdateCompany(ctx, c.ID, CompanyUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}
	if got.Name != "Acme Holdings" {
		t.Fatalf("name not updated: %+v", got)
	}

	if err := s.DeleteCompany(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCompany: %v", err)
	}
	if _, err := s.GetCompany(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateCompanyRequiresNameAndOrg(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if err := s.CreateCompany(ctx, &Company{OrganizationID: "org-a"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name: got %v", err)
	}
	if err := s.CreateCompany(ctx, &Company{Name: "Acme"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing org: got %v", err)
	}
}

func TestSearchCompaniesScoping(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	for _, c := range []Company{
		{OrganizationID: "org-a", Name: "Acme Foundry", Sector: "manufacturing"},
		{OrganizationID: "org-a", Name: "Beta Logistics", Sector: "transport"},
		{OrganizationID: "org-b", Name: "Gamma Foundry", Sector: "manufacturing"},
	} {
		cc := c
		if err := s.CreateCompany(ctx, &cc); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	scoped, err := s.SearchCompanies(ctx, "org-a", "foundry", 10)
	if err != nil {
		t.Fatalf("SearchCompanies: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "Acme Foundry" {
		t.Fatalf("scoped search wrong: %+v", scoped)
	}

	// Empty organization id is the admin view.
	all, err := s.SearchCompanies(ctx, "", "foundry", 10)
	if err != nil {
		t.Fatalf("SearchCompanies: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unscoped search wrong: %+v", all)
	}
}

func TestDealStageValidation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	d := Deal{OrganizationID: "org-a"}
	if err := s.CreateDeal(ctx, &d); err != nil {
		t.Fatalf("CreateDeal: %v", err)
	}
	if d.Stage != StageSourcing {
		t.Fatalf("default stage wrong: %+v", d)
	}

	bogus := "limbo"
	if _, err := s.UpdateDeal(ctx, d.ID, DealUpdate{Stage: &bogus}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bogus stage: got %v", err)
	}

	closed := StageClosed
	got, err := s.UpdateDeal(ctx, d.ID, DealUpdate{Stage: &closed})
	if err != nil {
		t.Fatalf("UpdateDeal: %v", err)
	}
	if got.Stage != StageClosed {
		t.Fatalf("stage not updated: %+v", got)
	}
}

func TestDealReferencesExistingCompany(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	d := Deal{OrganizationID: "org-a", CompanyID: "ghost"}
	if err := s.CreateDeal(ctx, &d); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestNDASignOnce(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	n := NDA{OrganizationID: "org-a"}
	if err := s.CreateNDA(ctx, &n); err != nil {
		t.Fatalf("CreateNDA: %v", err)
	}
	if n.Status != NDAStatusDraft {
		t.Fatalf("new nda not draft: %+v", n)
	}

	signed, err := s.SignNDA(ctx, n.ID, "user-1")
	if err != nil {
		t.Fatalf("SignNDA: %v", err)
	}
	if signed.Status != NDAStatusSigned || signed.SignedBy != "user-1" || signed.SignedAt == nil {
		t.Fatalf("sign incomplete: %+v", signed)
	}

	if _, err := s.SignNDA(ctx, n.ID, "user-2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("re-sign: got %v, want ErrConflict", err)
	}
}

func TestResourceOrganizationSpeaksAuthErrors(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	c := Company{OrganizationID: "org-a", Name: "Acme"}
	if err := s.CreateCompany(ctx, &c); err != nil {
		t.Fatalf("seed: %v", err)
	}

	owner, err := s.ResourceOrganization(ctx, "companies", c.ID)
	if err != nil || owner != "org-a" {
		t.Fatalf("owner=%q err=%v", owner, err)
	}

	if _, err := s.ResourceOrganization(ctx, "companies", "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("got %v, want auth.ErrNotFound", err)
	}
	if _, err := s.ResourceOrganization(ctx, "pg_tables", "x"); err == nil {
		t.Fatal("expected rejection of unknown table")
	}
}
