package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/registration/models"
	"onboard-gateway/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Postgres persists pending registrations in the pending_registrations table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the pending_registrations table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create pending registration schema: %w", err)
	}
	return nil
}

// ExpirePending moves the expiry of every active registration for email to
// now. It is not combined with Insert in a transaction.
func (s *Postgres) ExpirePending(ctx context.Context, email string, now time.Time) (int64, error) {
	query := `
		UPDATE pending_registrations
		SET expires_at = $2
		WHERE email = $1 AND expires_at > $2
	`
	res, err := s.db.ExecContext(ctx, query, email, now)
	if err != nil {
		return 0, fmt.Errorf("expire pending registrations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire pending registrations: %w", err)
	}
	return n, nil
}

func (s *Postgres) Insert(ctx context.Context, p *models.PendingRegistration) error {
	responses, err := json.Marshal(p.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	var address sql.NullString
	if p.AddressPreference != nil {
		address = sql.NullString{String: string(*p.AddressPreference), Valid: true}
	}

	query := `
		INSERT INTO pending_registrations (
			id, token, email, first_name, last_name, method, password_hash,
			address_preference, entry_answer_id, path, responses,
			neutral_block_visited, created_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.Token,
		p.Email,
		p.FirstNameOrNickname,
		p.LastName,
		string(p.Method),
		p.PasswordHash,
		address,
		string(p.EntryAnswerID),
		string(p.Path),
		string(responses),
		p.NeutralBlockVisited,
		p.CreatedAt,
		p.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("insert pending registration: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert pending registration: %w", err)
	}
	return nil
}

func (s *Postgres) FindByToken(ctx context.Context, token string) (*models.PendingRegistration, error) {
	query := `
		SELECT id, token, email, first_name, last_name, method, password_hash,
		       address_preference, entry_answer_id, path, responses,
		       neutral_block_visited, created_at, expires_at
		FROM pending_registrations
		WHERE token = $1
	`
	var (
		p         models.PendingRegistration
		method    string
		address   sql.NullString
		entryID   string
		path      string
		responses []byte
	)
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&p.ID, &p.Token, &p.Email, &p.FirstNameOrNickname, &p.LastName, &method, &p.PasswordHash,
		&address, &entryID, &path, &responses,
		&p.NeutralBlockVisited, &p.CreatedAt, &p.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pending registration: %w", err)
	}
	if err := json.Unmarshal(responses, &p.Responses); err != nil {
		return nil, fmt.Errorf("unmarshal responses: %w", err)
	}
	p.Method = models.Method(method)
	p.EntryAnswerID = flow.EntryAnswerID(entryID)
	p.Path = flow.Path(path)
	if address.Valid {
		a := models.AddressPreference(address.String)
		p.AddressPreference = &a
	}
	return &p, nil
}
