package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "onboard-gateway/pkg/platform/audit"
)

//go:embed schema.sql
var schema string

// Store implements audit.Store on the audit_events table. Used when no Kafka
// brokers are configured but a database is.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit_events table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts an event. Duplicate ids are ignored so redelivery is harmless.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	// Always derive category from action when the caller left it empty.
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO audit_events (
			id, category, action, subject, subject_hash, path,
			decision, reason, request_id, client_ip, device_name, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Action,
		event.Subject,
		event.SubjectHash,
		event.Path,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.DeviceName,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAction returns events for one action, most recent first.
func (s *Store) ListByAction(ctx context.Context, action audit.AuditEvent, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, category, action, subject, subject_hash, path,
		       decision, reason, request_id, client_ip, device_name, created_at
		FROM audit_events
		WHERE action = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(action), limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
		)
		if err := rows.Scan(
			&e.ID, &category, &e.Action, &e.Subject, &e.SubjectHash, &e.Path,
			&e.Decision, &e.Reason, &e.RequestID, &e.ClientIP, &e.DeviceName, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
