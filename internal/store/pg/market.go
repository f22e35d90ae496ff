// Package pg implements the marketplace service on PostgreSQL. Queries use
// the pgx stdlib driver through database/sql so the store stays mockable in
// tests.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealdesk.org/internal/ids"
	"dealdesk.org/internal/market"
)

// Store implements market.Service over *sql.DB.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const companyColumns = "id, organization_id, name, sector, region, revenue, description, created_at, updated_at"

func (s *Store) CreateCompany(ctx context.Context, c *market.Company) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: company name is required", market.ErrInvalidInput)
	}
	if c.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", market.ErrInvalidInput)
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		insert into companies (`+companyColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.OrganizationID, c.Name, c.Sector, c.Region, c.Revenue, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (market.Company, error) {
	row := s.db.QueryRowContext(ctx, `select `+companyColumns+` from companies where id=$1`, id)
	return scanCompany(row)
}

func (s *Store) UpdateCompany(ctx context.Context, id string, upd market.CompanyUpdate) (market.Company, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return market.Company{}, fmt.Errorf("%w: company name is required", market.ErrInvalidInput)
		}
		add("name", strings.TrimSpace(*upd.Name))
	}
	if upd.Sector != nil {
		add("sector", *upd.Sector)
	}
	if upd.Region != nil {
		add("region", *upd.Region)
	}
	if upd.Revenue != nil {
		if *upd.Revenue < 0 {
			return market.Company{}, fmt.Errorf("%w: revenue must be >= 0", market.ErrInvalidInput)
		}
		add("revenue", *upd.Revenue)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if len(sets) == 0 {
		return s.GetCompany(ctx, id)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`update companies set %s where id=$%d returning `+companyColumns,
		strings.Join(sets, ", "), len(args))
	return scanCompany(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	return deleteRow(ctx, s.db, "companies", id)
}

func (s *Store) SearchCompanies(ctx context.Context, organizationID, query string, limit int) ([]market.Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	where := []string{}
	args := []any{}
	if organizationID != "" {
		args = append(args, organizationID)
		where = append(where, fmt.Sprintf("organization_id=$%d", len(args)))
	}
	if q := strings.TrimSpace(query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(lower(name) like $%d or lower(sector) like $%d or lower(region) like $%d)", n, n, n))
	}
	sqlText := `select ` + companyColumns + ` from companies`
	if len(where) > 0 {
		sqlText += " where " + strings.Join(where, " and ")
	}
	sqlText += fmt.Sprintf(" order by id limit %d", limit)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	defer rows.Close()

	var out []market.Company
	for rows.Next() {
		c, err := scanCompanyRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const dealColumns = "id, organization_id, company_id, stage, amount, currency, created_at, updated_at"

func (s *Store) CreateDeal(ctx context.Context, d *market.Deal) error {
	if d.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", market.ErrInvalidInput)
	}
	if d.Stage == "" {
		d.Stage = market.StageSourcing
	}
	if !market.ValidStage(d.Stage) {
		return fmt.Errorf("%w: unknown stage %s", market.ErrInvalidInput, d.Stage)
	}
	if d.Amount < 0 {
		return fmt.Errorf("%w: amount must be >= 0", market.ErrInvalidInput)
	}
	if d.ID == "" {
		d.ID = ids.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	var companyID any
	if d.CompanyID != "" {
		companyID = d.CompanyID
	}
	_, err := s.db.ExecContext(ctx, `
		insert into deals (`+dealColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.OrganizationID, companyID, d.Stage, d.Amount, d.Currency, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

func (s *Store) GetDeal(ctx context.Context, id string) (market.Deal, error) {
	row := s.db.QueryRowContext(ctx, `select `+dealColumns+` from deals where id=$1`, id)
	return scanDeal(row)
}

func (s *Store) UpdateDeal(ctx context.Context, id string, upd market.DealUpdate) (market.Deal, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.Stage != nil {
		if !market.ValidStage(*upd.Stage) {
			return market.Deal{}, fmt.Errorf("%w: unknown stage %s", market.ErrInvalidInput, *upd.Stage)
		}
		add("stage", *upd.Stage)
	}
	if upd.Amount != nil {
		if *upd.Amount < 0 {
			return market.Deal{}, fmt.Errorf("%w: amount must be >= 0", market.ErrInvalidInput)
		}
		add("amount", *upd.Amount)
	}
	if upd.Currency != nil {
		add("currency", strings.ToUpper(strings.TrimSpace(*upd.Currency)))
	}
	if len(sets) == 0 {
		return s.GetDeal(ctx, id)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`update deals set %s where id=$%d returning `+dealColumns,
		strings.Join(sets, ", "), len(args))
	return scanDeal(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) DeleteDeal(ctx context.Context, id string) error {
	return deleteRow(ctx, s.db, "deals", id)
}

const ndaColumns = "id, organization_id, deal_id, status, signed_by, signed_at, created_at, updated_at"

func (s *Store) CreateNDA(ctx context.Context, n *market.NDA) error {
	if n.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", market.ErrInvalidInput)
	}
	if n.ID == "" {
		n.ID = ids.New()
	}
	n.Status = market.NDAStatusDraft
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	var dealID any
	if n.DealID != "" {
		dealID = n.DealID
	}
	_, err := s.db.ExecContext(ctx, `
		insert into ndas (id, organization_id, deal_id, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.OrganizationID, dealID, n.Status, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert nda: %w", err)
	}
	return nil
}

func (s *Store) GetNDA(ctx context.Context, id string) (market.NDA, error) {
	row := s.db.QueryRowContext(ctx, `select `+ndaColumns+` from ndas where id=$1`, id)
	return scanNDA(row)
}

// SignNDA transitions draft -> signed exactly once. The status predicate in
// the update makes the transition atomic under concurrent sign attempts.
func (s *Store) SignNDA(ctx context.Context, id, signerUserID string) (market.NDA, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		update ndas set status=$1, signed_by=$2, signed_at=$3, updated_at=$3
		where id=$4 and status=$5
		returning `+ndaColumns,
		market.NDAStatusSigned, signerUserID, now, id, market.NDAStatusDraft)
	n, err := scanNDA(row)
	if errors.Is(err, market.ErrNotFound) {
		// Either the nda does not exist or it is already signed.
		if _, getErr := s.GetNDA(ctx, id); getErr == nil {
			return market.NDA{}, fmt.Errorf("%w: nda already signed", market.ErrConflict)
		}
		return market.NDA{}, market.ErrNotFound
	}
	return n, err
}

func deleteRow(ctx context.Context, db *sql.DB, table, id string) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf("delete from %s where id=$1", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return market.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (market.Company, error) {
	var c market.Company
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Sector, &c.Region, &c.Revenue, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Company{}, market.ErrNotFound
	}
	if err != nil {
		return market.Company{}, fmt.Errorf("scan company: %w", err)
	}
	return c, nil
}

func scanCompanyRows(rows *sql.Rows) (market.Company, error) {
	var c market.Company
	if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Sector, &c.Region, &c.Revenue, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return market.Company{}, fmt.Errorf("scan company: %w", err)
	}
	return c, nil
}

func scanDeal(row rowScanner) (market.Deal, error) {
	var d market.Deal
	var companyID sql.NullString
	err := row.Scan(&d.ID, &d.OrganizationID, &companyID, &d.Stage, &d.Amount, &d.Currency, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Deal{}, market.ErrNotFound
	}
	if err != nil {
		return market.Deal{}, fmt.Errorf("scan deal: %w", err)
	}
	d.CompanyID = companyID.String
	return d, nil
}

func scanNDA(row rowScanner) (market.NDA, error) {
	var n market.NDA
	var dealID, signedBy sql.NullString
	var signedAt sql.NullTime
	err := row.Scan(&n.ID, &n.OrganizationID, &dealID, &n.Status, &signedBy, &signedAt, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return market.NDA{}, market.ErrNotFound
	}
	if err != nil {
		return market.NDA{}, fmt.Errorf("scan nda: %w", err)
	}
	n.DealID = dealID.String
	n.SignedBy = signedBy.String
	if signedAt.Valid {
		t := signedAt.Time
		n.SignedAt = &t
	}
	return n, nil
}
