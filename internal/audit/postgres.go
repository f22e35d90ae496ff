package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGStore persists the trail in the audit_log table. The table has no
// update or delete paths; retention is handled outside the application.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Append(ctx context.Context, entry *Entry) error {
	var payload []byte
	if entry.Payload != nil {
		var err error
		payload, err = json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		insert into audit_log (id, occurred_at, actor_user_id, organization_id, action, resource_type, resource_id, payload, request_id)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.OccurredAt, entry.ActorUserID, entry.OrganizationID,
		entry.Action, entry.ResourceType, entry.ResourceID, payload, entry.RequestID)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, organizationID string, limit int) ([]Entry, error) {
	query := `
		select id, occurred_at, actor_user_id, organization_id, action, resource_type, resource_id, payload, request_id
		from audit_log`
	args := []any{}
	if organizationID != "" {
		query += " where organization_id=$1"
		args = append(args, organizationID)
	}
	query += fmt.Sprintf(" order by occurred_at desc, id desc limit %d", limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var payload []byte
		var requestID sql.NullString
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.ActorUserID, &e.OrganizationID,
			&e.Action, &e.ResourceType, &e.ResourceID, &payload, &requestID); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("decode payload for %s: %w", e.ID, err)
			}
		}
		e.RequestID = requestID.String
		out = append(out, e)
	}
	return out, rows.Err()
}
