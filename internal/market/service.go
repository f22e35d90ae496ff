package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/ids"
)

// Service defines marketplace operations. All lookups are by bare id; the
// caller is responsible for running the scope check first.
type Service interface {
	CreateCompany(ctx context.Context, c *Company) error
	GetCompany(ctx context.Context, id string) (Company, error)
	UpdateCompany(ctx context.Context, id string, upd CompanyUpdate) (Company, error)
	DeleteCompany(ctx context.Context, id string) error
	// SearchCompanies matches name/sector/region substrings. A non-empty
	// organizationID restricts results to that tenant.
	SearchCompanies(ctx context.Context, organizationID, query string, limit int) ([]Company, error)

	CreateDeal(ctx context.Context, d *Deal) error
	GetDeal(ctx context.Context, id string) (Deal, error)
	UpdateDeal(ctx context.Context, id string, upd DealUpdate) (Deal, error)
	DeleteDeal(ctx context.Context, id string) error

	CreateNDA(ctx context.Context, n *NDA) error
	GetNDA(ctx context.Context, id string) (NDA, error)
	SignNDA(ctx context.Context, id, signerUserID string) (NDA, error)
}

// InMemory implements Service with in-process locking. Used in tests and in
// dev mode when no database DSN is configured.
type InMemory struct {
	mu        sync.RWMutex
	companies map[string]*Company
	deals     map[string]*Deal
	ndas      map[string]*NDA
}

// NewInMemory creates an empty marketplace.
func NewInMemory() *InMemory {
	return &InMemory{
		companies: make(map[string]*Company),
		deals:     make(map[string]*Deal),
		ndas:      make(map[string]*NDA),
	}
}

func (s *InMemory) CreateCompany(ctx context.Context, c *Company) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if c.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemory) GetCompany(ctx context.Context, id string) (Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) UpdateCompany(ctx context.Context, id string, upd CompanyUpdate) (Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return Company{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
		}
		c.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Sector != nil {
		c.Sector = *upd.Sector
	}
	if upd.Region != nil {
		c.Region = *upd.Region
	}
	if upd.Revenue != nil {
		if *upd.Revenue < 0 {
			return Company{}, fmt.Errorf("%w: revenue must be >= 0", ErrInvalidInput)
		}
		c.Revenue = *upd.Revenue
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	c.UpdatedAt = time.Now().UTC()
	return *c, nil
}

func (s *InMemory) DeleteCompany(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

func (s *InMemory) SearchCompanies(ctx context.Context, organizationID, query string, limit int) ([]Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Company
	for _, c := range s.companies {
		if organizationID != "" && c.OrganizationID != organizationID {
			continue
		}
		if needle != "" && !matches(c, needle) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matches(c *Company, needle string) bool {
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.Sector), needle) ||
		strings.Contains(strings.ToLower(c.Region), needle)
}

func (s *InMemory) CreateDeal(ctx context.Context, d *Deal) error {
	if d.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", ErrInvalidInput)
	}
	if d.Stage == "" {
		d.Stage = StageSourcing
	}
	if !ValidStage(d.Stage) {
		return fmt.Errorf("%w: unknown stage %s", ErrInvalidInput, d.Stage)
	}
	if d.Amount < 0 {
		return fmt.Errorf("%w: amount must be >= 0", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d.CompanyID != "" {
		if _, ok := s.companies[d.CompanyID]; !ok {
			return fmt.Errorf("%w: company %s", ErrNotFound, d.CompanyID)
		}
	}
	if d.ID == "" {
		d.ID = ids.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	cp := *d
	s.deals[d.ID] = &cp
	return nil
}

func (s *InMemory) GetDeal(ctx context.Context, id string) (Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deals[id]
	if !ok {
		return Deal{}, ErrNotFound
	}
	return *d, nil
}

func (s *InMemory) UpdateDeal(ctx context.Context, id string, upd DealUpdate) (Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return Deal{}, ErrNotFound
	}
	if upd.Stage != nil {
		if !ValidStage(*upd.Stage) {
			return Deal{}, fmt.Errorf("%w: unknown stage %s", ErrInvalidInput, *upd.Stage)
		}
		d.Stage = *upd.Stage
	}
	if upd.Amount != nil {
		if *upd.Amount < 0 {
			return Deal{}, fmt.Errorf("%w: amount must be >= 0", ErrInvalidInput)
		}
		d.Amount = *upd.Amount
	}
	if upd.Currency != nil {
		d.Currency = strings.ToUpper(strings.TrimSpace(*upd.Currency))
	}
	d.UpdatedAt = time.Now().UTC()
	return *d, nil
}

func (s *InMemory) DeleteDeal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[id]; !ok {
		return ErrNotFound
	}
	delete(s.deals, id)
	return nil
}

func (s *InMemory) CreateNDA(ctx context.Context, n *NDA) error {
	if n.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.DealID != "" {
		if _, ok := s.deals[n.DealID]; !ok {
			return fmt.Errorf("%w: deal %s", ErrNotFound, n.DealID)
		}
	}
	if n.ID == "" {
		n.ID = ids.New()
	}
	n.Status = NDAStatusDraft
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	s.ndas[n.ID] = &cp
	return nil
}

func (s *InMemory) GetNDA(ctx context.Context, id string) (NDA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.ndas[id]
	if !ok {
		return NDA{}, ErrNotFound
	}
	return *n, nil
}

func (s *InMemory) SignNDA(ctx context.Context, id, signerUserID string) (NDA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.ndas[id]
	if !ok {
		return NDA{}, ErrNotFound
	}
	if n.Status == NDAStatusSigned {
		return NDA{}, fmt.Errorf("%w: nda already signed", ErrConflict)
	}
	now := time.Now().UTC()
	n.Status = NDAStatusSigned
	n.SignedBy = signerUserID
	n.SignedAt = &now
	n.UpdatedAt = now
	return *n, nil
}

// ResourceOrganization lets the in-memory marketplace double as the scope
// store in tests and dev mode. It speaks the auth package's error kinds
// because the scope validator discriminates on them.
func (s *InMemory) ResourceOrganization(ctx context.Context, table, resourceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch table {
	case "companies":
		if c, ok := s.companies[resourceID]; ok {
			return c.OrganizationID, nil
		}
	case "deals":
		if d, ok := s.deals[resourceID]; ok {
			return d.OrganizationID, nil
		}
	case "ndas":
		if n, ok := s.ndas[resourceID]; ok {
			return n.OrganizationID, nil
		}
	default:
		return "", fmt.Errorf("scope lookup on unknown table %q", table)
	}
	return "", auth.ErrNotFound
}
