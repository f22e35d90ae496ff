package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealdesk.org/internal/ids"
	"dealdesk.org/internal/rbac"
)

var _ ProfileStore = (*PGStore)(nil)
var _ ScopeStore = (*PGStore)(nil)

// scopedTables whitelists the tables the scope validator may query. The
// table name is interpolated into SQL, so membership here is a hard
// requirement, not an optimization.
var scopedTables = map[string]bool{
	"companies":      true,
	"deals":          true,
	"listings":       true,
	"documents":      true,
	"ndas":           true,
	"buyer_profiles": true,
	"payments":       true,
}

// PGStore implements ProfileStore and ScopeStore using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const profileColumns = `user_id, organization_id, email, role, is_admin, password_hash, status, created_at, updated_at`

func (s *PGStore) CreateProfile(ctx context.Context, p *Profile) error {
	if p.UserID == "" {
		p.UserID = ids.New()
	}
	if p.Status == "" {
		p.Status = ProfileStatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`insert into profiles(user_id, organization_id, email, role, is_admin, password_hash, status, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.UserID, p.OrganizationID, p.Email, string(p.Role), p.IsAdmin, p.PasswordHash, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PGStore) FindProfile(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+profileColumns+` from profiles where user_id=$1`, userID)
	return scanProfile(row)
}

func (s *PGStore) FindProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+profileColumns+` from profiles where email=$1`, email)
	return scanProfile(row)
}

// ListProfiles returns profiles in one organization; an empty organizationID
// lists every profile (admin view).
func (s *PGStore) ListProfiles(ctx context.Context, organizationID string) ([]Profile, error) {
	query := `select ` + profileColumns + ` from profiles order by created_at`
	args := []any{}
	if organizationID != "" {
		query = `select ` + profileColumns + ` from profiles where organization_id=$1 order by created_at`
		args = append(args, organizationID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *PGStore) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (Profile, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}
	if upd.IsAdmin != nil {
		add("is_admin", *upd.IsAdmin)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Password != nil {
		add("password_hash", *upd.Password)
	}
	if len(sets) == 0 {
		return s.FindProfile(ctx, userID)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, userID)

	query := fmt.Sprintf(`update profiles set %s where user_id=$%d returning `+profileColumns,
		strings.Join(sets, ", "), len(args))
	return scanProfile(s.db.QueryRowContext(ctx, query, args...))
}

func (s *PGStore) DeleteProfile(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `delete from profiles where user_id=$1`, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResourceOrganization looks up the owning organization of a row in one of
// the whitelisted tenant tables.
func (s *PGStore) ResourceOrganization(ctx context.Context, table, resourceID string) (string, error) {
	if !scopedTables[table] {
		return "", fmt.Errorf("scope lookup on unknown table %q", table)
	}
	var owner string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select organization_id from %s where id=$1`, table), resourceID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var (
		p    Profile
		role string
	)
	err := row.Scan(&p.UserID, &p.OrganizationID, &p.Email, &role, &p.IsAdmin,
		&p.PasswordHash, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	p.Role = rbac.Role(role)
	return p, nil
}
