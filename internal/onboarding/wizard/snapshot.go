package wizard

import (
	"onboard-gateway/internal/onboarding/draft"
	"onboard-gateway/internal/onboarding/flow"
)

// Snapshot is a draft together with what the UI needs to render it.
type Snapshot struct {
	Draft draft.Draft
	// Step is the current step when the draft is on a path stage.
	Step     *flow.Step
	Progress float64
}

func describe(g *flow.Graph, d draft.Draft) Snapshot {
	snap := Snapshot{Draft: d}
	if d.Stage != flow.StagePath {
		if d.Stage == flow.StageRegistration {
			snap.Progress = 100
		}
		return snap
	}
	if step, ok := g.StepByID(d.ActivePath(), d.StepID()); ok {
		snap.Step = &step
		snap.Progress = g.Progress(d.ActivePath(), step.ID)
	}
	return snap
}
