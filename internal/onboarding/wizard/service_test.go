package wizard

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"onboard-gateway/internal/onboarding/draft"
	"onboard-gateway/internal/onboarding/draft/kv"
	"onboard-gateway/internal/onboarding/flow"
	dErrors "onboard-gateway/pkg/domain-errors"
	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/audit/store/memory"
)

const clientID = "5b1c8d4e-0f4a-4a59-9d7e-3c1f2a6b9e10"

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	kv      *kv.Memory
	audit   *memory.InMemoryStore
	metrics *Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// syncAuditor writes straight to the memory store so assertions need no waiting.
type syncAuditor struct {
	store *memory.InMemoryStore
}

func (a syncAuditor) Emit(ctx context.Context, e audit.Event) error {
	return a.store.Append(ctx, e)
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = kv.NewMemory()
	s.audit = memory.NewInMemoryStore()
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.service = New(s.kv,
		WithMetrics(s.metrics),
		WithAuditPublisher(syncAuditor{store: s.audit}),
	)
}

func (s *ServiceSuite) stored() draft.Draft {
	return draft.New(s.kv, draft.KeyFor(clientID)).Load(s.ctx)
}

func (s *ServiceSuite) startPath(answer flow.EntryAnswerID) {
	_, err := s.service.ChooseEntry(s.ctx, clientID, answer)
	s.Require().NoError(err)
}

func (s *ServiceSuite) submit(stepID, optionID string, responses map[string]any) flow.Location {
	_, loc, err := s.service.SubmitStep(s.ctx, clientID, stepID, optionID, responses)
	s.Require().NoError(err)
	return loc
}

func (s *ServiceSuite) TestCurrentForNewClientIsEmpty() {
	snap, err := s.service.Current(s.ctx, clientID)
	s.Require().NoError(err)
	s.Equal(draft.Empty(), snap.Draft)
	s.Nil(snap.Step)
}

func (s *ServiceSuite) TestMissingClientID() {
	_, err := s.service.Current(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestChooseEntry() {
	s.Run("places the client on the first step of the mapped path", func() {
		snap, err := s.service.ChooseEntry(s.ctx, clientID, flow.EntryAnswer3)
		s.Require().NoError(err)

		s.Equal(flow.StagePath, snap.Draft.Stage)
		s.Equal(flow.PathB, snap.Draft.ActivePath())
		s.Equal("B1", snap.Draft.StepID())
		s.Require().NotNil(snap.Step)
		s.Equal("B1", snap.Step.ID)
		s.InDelta(20.0, snap.Progress, 0.001)
		s.Equal(snap.Draft, s.stored())
	})

	s.Run("rejects unknown entry answers", func() {
		_, err := s.service.ChooseEntry(s.ctx, clientID, "entry_6")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.ErrorIs(err, flow.ErrInvalidEntryAnswer)
	})

	s.Run("restarts responses but keeps a pending link token", func() {
		d := s.stored()
		d.PendingLinkToken = ptr("tok")
		d.Responses = map[string]any{flow.FieldGuidanceNeed: "x"}
		draft.New(s.kv, draft.KeyFor(clientID)).Save(s.ctx, d)

		snap, err := s.service.ChooseEntry(s.ctx, clientID, flow.EntryAnswer5)
		s.Require().NoError(err)
		s.Empty(snap.Draft.Responses)
		s.Equal(ptr("tok"), snap.Draft.PendingLinkToken)
		s.Equal("C1", snap.Draft.StepID())
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("invalid_entry")))
}

func (s *ServiceSuite) TestWalkPathBToRegistration() {
	s.startPath(flow.EntryAnswer2)

	s.Equal(flow.PathStep("B2"), s.submit("B1", flow.OptionNext, map[string]any{flow.FieldGuidanceNeed: "structure"}))
	s.Equal(flow.PathStep("B3"), s.submit("B2", flow.OptionNext, map[string]any{flow.FieldTopicsOfInterest: []any{"family"}}))
	s.Equal(flow.PathStep("B4"), s.submit("B3", flow.OptionNext, map[string]any{flow.FieldSessionFrequency: "weekly"}))
	s.Equal(flow.PathStep("B5"), s.submit("B4", flow.OptionContinueGuided, nil))
	s.Equal(flow.Registration(), s.submit("B5", flow.OptionFinish, map[string]any{flow.FieldReminderPreference: "email"}))

	d := s.stored()
	s.Equal(flow.StageRegistration, d.Stage)
	s.False(d.NeutralBlockVisited)
	s.Len(d.Responses, 4)

	events, err := s.audit.ListByAction(s.ctx, audit.EventStepCompleted)
	s.Require().NoError(err)
	s.Len(events, 5)
	s.Equal(clientID, events[0].Subject)
}

func (s *ServiceSuite) TestSubmitStepRejections() {
	s.Run("before an entry is chosen", func() {
		_, _, err := s.service.SubmitStep(s.ctx, clientID, "A1", flow.OptionNext, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.startPath(flow.EntryAnswer5)

	s.Run("stale step id", func() {
		_, _, err := s.service.SubmitStep(s.ctx, clientID, "C3", flow.OptionNext, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("undeclared option", func() {
		_, _, err := s.service.SubmitStep(s.ctx, clientID, "C1", flow.OptionFinish,
			map[string]any{flow.FieldThirdPersonName: "Oma"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.ErrorIs(err, flow.ErrUnknownOption)

		events, _ := s.audit.ListByAction(s.ctx, audit.EventTransitionRejected)
		s.Len(events, 1)
		s.Equal(audit.CategorySecurity, audit.AuditEvent(events[0].Action).Category())
	})

	s.Run("incomplete demographic step is not persisted", func() {
		s.submit("C1", flow.OptionNext, map[string]any{flow.FieldThirdPersonName: "Oma"})

		_, _, err := s.service.SubmitStep(s.ctx, clientID, "C2", flow.OptionNext, map[string]any{
			flow.FieldRelationshipToPerson: "grandchild",
			flow.FieldThirdPersonAgeRange:  "  ",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.ErrorContains(err, flow.FieldThirdPersonAgeRange)

		d := s.stored()
		s.Equal("C2", d.StepID())
		s.NotContains(d.Responses, flow.FieldRelationshipToPerson)
	})
}

func (s *ServiceSuite) TestNeutralBlock() {
	s.Run("jumping in marks the block visited", func() {
		s.startPath(flow.EntryAnswer2)
		s.submit("B1", flow.OptionNext, map[string]any{flow.FieldGuidanceNeed: "a"})
		s.submit("B2", flow.OptionNext, map[string]any{flow.FieldTopicsOfInterest: "b"})
		s.submit("B3", flow.OptionNext, map[string]any{flow.FieldSessionFrequency: "c"})
		s.Equal(flow.Neutral(), s.submit("B4", flow.OptionJumpToNeutral, nil))

		d := s.stored()
		s.Equal(flow.StageNeutral, d.Stage)
		s.True(d.NeutralBlockVisited)
		s.Equal("B4", d.StepID())
	})

	s.Run("resume returns to the origin path", func() {
		snap, loc, err := s.service.LeaveNeutral(s.ctx, clientID, true)
		s.Require().NoError(err)
		s.Equal(flow.PathStep("B5"), loc)
		s.Equal("B5", snap.Draft.StepID())
		s.True(snap.Draft.NeutralBlockVisited)
	})

	s.Run("leaving when not in the block", func() {
		_, _, err := s.service.LeaveNeutral(s.ctx, clientID, false)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("path A resumes into registration", func() {
		s.startPath(flow.EntryAnswer1)
		s.submit("A1", flow.OptionNext, map[string]any{flow.FieldStoryMotivation: "a"})
		s.submit("A2", flow.OptionNext, map[string]any{flow.FieldLifePhase: "b"})
		s.submit("A3", flow.OptionNext, map[string]any{flow.FieldStoryTone: "c"})
		s.submit("A4", flow.OptionStartStorytelling, nil)

		snap, loc, err := s.service.LeaveNeutral(s.ctx, clientID, true)
		s.Require().NoError(err)
		s.Equal(flow.Registration(), loc)
		s.Equal(100.0, snap.Progress)
	})
}

func (s *ServiceSuite) TestAbandonAndClear() {
	s.startPath(flow.EntryAnswer1)
	s.Require().NoError(s.service.Abandon(s.ctx, clientID))
	s.Equal(draft.Empty(), s.stored())

	s.startPath(flow.EntryAnswer1)
	s.service.Clear(s.ctx, clientID)
	s.Equal(draft.Empty(), s.stored())

	events, _ := s.audit.ListByAction(s.ctx, audit.EventDraftAbandoned)
	s.Len(events, 1)
}

func (s *ServiceSuite) TestUnavailableStorage() {
	svc := New(nil)
	snap, err := svc.ChooseEntry(s.ctx, clientID, flow.EntryAnswer1)
	s.Require().NoError(err)
	s.Equal("A1", snap.Draft.StepID())

	// Nothing was persisted, so the next call starts from an empty draft.
	_, _, err = svc.SubmitStep(s.ctx, clientID, "A1", flow.OptionNext, map[string]any{flow.FieldStoryMotivation: "x"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func ptr[T any](v T) *T {
	return &v
}
