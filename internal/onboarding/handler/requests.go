package handler

import (
	"onboard-gateway/internal/onboarding/draft"
	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/onboarding/wizard"
)

type ChooseEntryRequest struct {
	AnswerID flow.EntryAnswerID `json:"answerId"`
}

type SubmitStepRequest struct {
	OptionID  string         `json:"optionId"`
	Responses map[string]any `json:"responses"`
}

type LeaveNeutralRequest struct {
	// Resume continues the origin path where possible; false goes to registration.
	Resume bool `json:"resume"`
}

type StepView struct {
	ID             string    `json:"id"`
	Path           flow.Path `json:"path"`
	Position       int       `json:"position"`
	RequiredFields []string  `json:"requiredFields"`
	Options        []string  `json:"options"`
}

type DraftResponse struct {
	Draft    draft.Draft    `json:"draft"`
	Step     *StepView      `json:"step,omitempty"`
	Progress float64        `json:"progress"`
	Next     *flow.Location `json:"next,omitempty"`
}

func toResponse(snap wizard.Snapshot, next *flow.Location) DraftResponse {
	resp := DraftResponse{
		Draft:    snap.Draft,
		Progress: snap.Progress,
		Next:     next,
	}
	if snap.Step != nil {
		required := snap.Step.RequiredFields
		if required == nil {
			required = []string{}
		}
		resp.Step = &StepView{
			ID:             snap.Step.ID,
			Path:           snap.Step.Path,
			Position:       snap.Step.Position,
			RequiredFields: required,
			Options:        snap.Step.OptionIDs(),
		}
	}
	return resp
}
