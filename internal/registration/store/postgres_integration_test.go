//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/registration/models"
	"onboard-gateway/internal/registration/store"
	"onboard-gateway/pkg/platform/sentinel"
	"onboard-gateway/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "pending_registrations"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newPending(email string) *models.PendingRegistration {
	formal := models.AddressFormal
	return &models.PendingRegistration{
		ID:                  uuid.New(),
		Token:               uuid.NewString(),
		Email:               email,
		FirstNameOrNickname: "Max",
		LastName:            "Mustermann",
		Method:              models.MethodPassword,
		PasswordHash:        "$2a$04$hash",
		AddressPreference:   &formal,
		EntryAnswerID:       flow.EntryAnswer5,
		Path:                flow.PathC,
		Responses:           map[string]any{flow.FieldThirdPersonName: "Oma", "tags": []any{"a", "b"}},
		NeutralBlockVisited: true,
		CreatedAt:           s.now,
		ExpiresAt:           s.now.Add(24 * time.Hour),
	}
}

func (s *PostgresStoreSuite) TestInsertAndFindByToken() {
	ctx := context.Background()
	p := s.newPending("max@example.com")
	s.Require().NoError(s.store.Insert(ctx, p))

	got, err := s.store.FindByToken(ctx, p.Token)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal(p.Email, got.Email)
	s.Equal(p.Responses, got.Responses)
	s.Equal(*p.AddressPreference, *got.AddressPreference)
	s.True(p.ExpiresAt.Equal(got.ExpiresAt))
}

func (s *PostgresStoreSuite) TestFindByTokenMissing() {
	_, err := s.store.FindByToken(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateTokenIsConflict() {
	ctx := context.Background()
	p := s.newPending("max@example.com")
	s.Require().NoError(s.store.Insert(ctx, p))

	dup := s.newPending("other@example.com")
	dup.Token = p.Token
	s.ErrorIs(s.store.Insert(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestExpirePendingThenInsert() {
	ctx := context.Background()
	first := s.newPending("max@example.com")
	s.Require().NoError(s.store.Insert(ctx, first))

	later := s.now.Add(time.Minute)
	n, err := s.store.ExpirePending(ctx, "max@example.com", later)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	second := s.newPending("max@example.com")
	second.CreatedAt = later
	second.ExpiresAt = later.Add(24 * time.Hour)
	s.Require().NoError(s.store.Insert(ctx, second))

	old, err := s.store.FindByToken(ctx, first.Token)
	s.Require().NoError(err)
	s.True(old.IsExpired(later))

	current, err := s.store.FindByToken(ctx, second.Token)
	s.Require().NoError(err)
	s.False(current.IsExpired(later))
}
