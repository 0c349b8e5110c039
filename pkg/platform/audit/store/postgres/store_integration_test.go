//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/audit/store/postgres"
	"onboard-gateway/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *AuditPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditPostgresSuite) TestAppendAndList() {
	ctx := context.Background()
	event := audit.Event{
		ID:          uuid.New(),
		Action:      string(audit.EventPendingRegistrationCreated),
		SubjectHash: audit.HashIdentifier("max@example.com"),
		Path:        "C",
		Timestamp:   time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByAction(ctx, audit.EventPendingRegistrationCreated, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.ID, events[0].ID)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal(event.SubjectHash, events[0].SubjectHash)
	s.True(event.Timestamp.Equal(events[0].Timestamp))
}

func (s *AuditPostgresSuite) TestAppendIsIdempotentOnID() {
	ctx := context.Background()
	event := audit.Event{ID: uuid.New(), Action: string(audit.EventStepCompleted)}
	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByAction(ctx, audit.EventStepCompleted, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}
