// Package audit appends an immutable record of every committed mutation.
// The trail is best-effort by contract: a failed append is reported to
// operators but never fails or rolls back the business operation it follows.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/ids"
	"dealdesk.org/internal/obs"
)

// Entry is one append-only audit row. Application code never updates or
// deletes entries.
type Entry struct {
	ID             string         `json:"id"`
	OccurredAt     time.Time      `json:"occurred_at"`
	ActorUserID    string         `json:"actor_user_id"`
	OrganizationID string         `json:"organization_id"`
	Action         string         `json:"action"`
	ResourceType   string         `json:"resource_type"`
	ResourceID     string         `json:"resource_id"`
	Payload        map[string]any `json:"payload,omitempty"`
	RequestID      string         `json:"request_id,omitempty"`
}

// Store persists entries. Append is the only mutation the interface admits.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, organizationID string, limit int) ([]Entry, error)
}

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context so recorded
// entries can be correlated with request logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Recorder writes entries after successful mutations.
type Recorder struct {
	store Store
	now   func() time.Time
}

// NewRecorder constructs a Recorder over the given store.
func NewRecorder(store Store) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("audit: store is required")
	}
	return &Recorder{store: store, now: time.Now}, nil
}

// Record appends one entry for a mutation that has already committed. It is
// called only on success paths; denied or failed attempts are not part of
// the trail. Append failures are logged and counted, never propagated: the
// caller's response must not depend on audit durability.
func (r *Recorder) Record(ctx context.Context, uc auth.UserContext, action, resourceType, resourceID string, payload map[string]any) {
	entry := &Entry{
		ID:             ids.New(),
		OccurredAt:     r.now().UTC(),
		ActorUserID:    uc.UserID,
		OrganizationID: uc.OrganizationID,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		RequestID:      requestIDFromContext(ctx),
	}
	if len(payload) > 0 {
		entry.Payload = make(map[string]any, len(payload))
		for k, v := range payload {
			entry.Payload[k] = v
		}
	}

	if err := r.store.Append(ctx, entry); err != nil {
		obs.AuditAppendFailed()
		line, _ := json.Marshal(map[string]any{
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
			"level":  "error",
			"msg":    "audit append failed",
			"action": action,
			"error":  err.Error(),
		})
		obs.Logger().Println(string(line))
	}
}

// List returns recent entries, newest first. Callers gate access with the
// audit:view permission before asking.
func (r *Recorder) List(ctx context.Context, organizationID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return r.store.List(ctx, organizationID, limit)
}

// InMemory is a Store for tests and dev mode.
type InMemory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewInMemory creates an empty in-memory trail.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *InMemory) List(ctx context.Context, organizationID string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if organizationID != "" && e.OrganizationID != organizationID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
