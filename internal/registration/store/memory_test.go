package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/registration/models"
	"onboard-gateway/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func newPending(email, token string, now time.Time) *models.PendingRegistration {
	return &models.PendingRegistration{
		ID:                  uuid.New(),
		Token:               token,
		Email:               email,
		FirstNameOrNickname: "Max",
		LastName:            "Mustermann",
		Method:              models.MethodMagicLink,
		EntryAnswerID:       flow.EntryAnswer1,
		Path:                flow.PathA,
		Responses:           map[string]any{flow.FieldStoryMotivation: "legacy"},
		CreatedAt:           now,
		ExpiresAt:           now.Add(24 * time.Hour),
	}
}

func (s *InMemoryStoreSuite) TestInsertAndFind() {
	p := newPending("max@example.com", "tok-1", s.now)
	s.Require().NoError(s.store.Insert(s.ctx, p))

	got, err := s.store.FindByToken(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal(p, got)

	got.Responses["mutated"] = true
	again, _ := s.store.FindByToken(s.ctx, "tok-1")
	s.NotContains(again.Responses, "mutated")
}

func (s *InMemoryStoreSuite) TestFindMissing() {
	_, err := s.store.FindByToken(s.ctx, "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestTokenCollision() {
	s.Require().NoError(s.store.Insert(s.ctx, newPending("a@example.com", "dup", s.now)))
	err := s.store.Insert(s.ctx, newPending("b@example.com", "dup", s.now))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestExpirePendingOnlyTouchesActiveRowsForEmail() {
	s.Require().NoError(s.store.Insert(s.ctx, newPending("max@example.com", "old", s.now.Add(-time.Hour))))
	s.Require().NoError(s.store.Insert(s.ctx, newPending("other@example.com", "other", s.now)))

	n, err := s.store.ExpirePending(s.ctx, "max@example.com", s.now)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	old, _ := s.store.FindByToken(s.ctx, "old")
	s.True(old.IsExpired(s.now))
	other, _ := s.store.FindByToken(s.ctx, "other")
	s.False(other.IsExpired(s.now))

	n, err = s.store.ExpirePending(s.ctx, "max@example.com", s.now)
	s.Require().NoError(err)
	s.Zero(n)
}
