package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealdesk.org/internal/rbac"
)

type stubProfileStore struct {
	findFn func(ctx context.Context, userID string) (Profile, error)
	calls  int
}

func (s *stubProfileStore) CreateProfile(context.Context, *Profile) error { return nil }
func (s *stubProfileStore) FindProfile(ctx context.Context, userID string) (Profile, error) {
	s.calls++
	if s.findFn != nil {
		return s.findFn(ctx, userID)
	}
	return Profile{}, ErrNotFound
}
func (s *stubProfileStore) FindProfileByEmail(context.Context, string) (Profile, error) {
	return Profile{}, ErrNotFound
}
func (s *stubProfileStore) ListProfiles(context.Context, string) ([]Profile, error) {
	return nil, nil
}
func (s *stubProfileStore) UpdateProfile(context.Context, string, ProfileUpdate) (Profile, error) {
	return Profile{}, ErrNotFound
}
func (s *stubProfileStore) DeleteProfile(context.Context, string) error { return nil }

func issueToken(t *testing.T, userID string) string {
	t.Helper()
	t.Setenv(secretEnvVariable, "resolver-secret")
	ResetSecretForTests()
	token, err := GenerateToken(userID, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func TestResolveHappyPath(t *testing.T) {
	token := issueToken(t, "user-7")
	store := &stubProfileStore{
		findFn: func(_ context.Context, userID string) (Profile, error) {
			if userID != "user-7" {
				t.Fatalf("unexpected lookup for %s", userID)
			}
			return Profile{
				UserID:         "user-7",
				OrganizationID: "org-a",
				Role:           rbac.RoleBroker,
				IsAdmin:        false,
				Status:         ProfileStatusActive,
			}, nil
		},
	}
	resolver, err := NewResolver(store)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	uc, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := UserContext{UserID: "user-7", OrganizationID: "org-a", Role: rbac.RoleBroker}
	if uc != want {
		t.Fatalf("unexpected context: %+v", uc)
	}
}

func TestResolveInvalidTokenSkipsStore(t *testing.T) {
	t.Setenv(secretEnvVariable, "resolver-secret")
	ResetSecretForTests()
	store := &stubProfileStore{}
	resolver, _ := NewResolver(store)

	if _, err := resolver.Resolve(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
	if store.calls != 0 {
		t.Fatalf("store consulted %d times for an invalid credential", store.calls)
	}
}

func TestResolveUnprovisionedSubject(t *testing.T) {
	token := issueToken(t, "ghost")
	resolver, _ := NewResolver(&stubProfileStore{})

	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestResolveDisabledProfile(t *testing.T) {
	token := issueToken(t, "user-9")
	resolver, _ := NewResolver(&stubProfileStore{
		findFn: func(context.Context, string) (Profile, error) {
			return Profile{UserID: "user-9", Status: ProfileStatusDisabled}, nil
		},
	})

	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestResolveStoreFailureIsUnavailable(t *testing.T) {
	token := issueToken(t, "user-9")
	resolver, _ := NewResolver(&stubProfileStore{
		findFn: func(context.Context, string) (Profile, error) {
			return Profile{}, errors.New("connection refused")
		},
	})

	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}
