package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"dealdesk.org/internal/ids"
)

var _ ProfileStore = (*InMemoryProfiles)(nil)

// InMemoryProfiles is a ProfileStore for tests and dev mode when no database
// is configured.
type InMemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewInMemoryProfiles() *InMemoryProfiles {
	return &InMemoryProfiles{profiles: make(map[string]*Profile)}
}

func (s *InMemoryProfiles) CreateProfile(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.UserID == "" {
		p.UserID = ids.New()
	}
	if p.Status == "" {
		p.Status = ProfileStatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *InMemoryProfiles) FindProfile(ctx context.Context, userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return *p, nil
}

func (s *InMemoryProfiles) FindProfileByEmail(ctx context.Context, email string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, p := range s.profiles {
		if strings.ToLower(p.Email) == email {
			return *p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (s *InMemoryProfiles) ListProfiles(ctx context.Context, organizationID string) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Profile
	for _, p := range s.profiles {
		if organizationID != "" && p.OrganizationID != organizationID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *InMemoryProfiles) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Role != nil {
		p.Role = *upd.Role
	}
	if upd.IsAdmin != nil {
		p.IsAdmin = *upd.IsAdmin
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Password != nil {
		p.PasswordHash = *upd.Password
	}
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (s *InMemoryProfiles) DeleteProfile(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, userID)
	return nil
}
