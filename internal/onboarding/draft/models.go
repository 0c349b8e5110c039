package draft

import (
	"maps"

	"onboard-gateway/internal/onboarding/flow"
)

// SchemaVersion is the current draft schema. Any stored draft with a
// different version loads as Empty; there is no migration.
const SchemaVersion = "alt-onboarding/2"

// DefaultKey is the storage key used when a single draft is persisted per store.
const DefaultKey = "onboarding:alt-flow:draft"

// KeyFor namespaces the draft key by onboarding client id.
func KeyFor(clientID string) string {
	return DefaultKey + ":" + clientID
}

// Draft is the in-progress snapshot of one onboarding session.
//
// Invariants (enforced on Load):
//   - Version equals SchemaVersion
//   - Stage path implies CurrentStepID resolves within Path
//   - Entry, when present, satisfies its own answer mapping and, when Path
//     is set, agrees with it
type Draft struct {
	Version             string            `json:"version"`
	Stage               flow.Stage        `json:"stage"`
	Path                *flow.Path        `json:"path"`
	Entry               *flow.EntryAnswer `json:"entry"`
	CurrentStepID       *string           `json:"currentStepId"`
	// Responses holds JSON-typed values: after a Load, numbers are float64,
	// lists are []any and objects are map[string]any.
	Responses           map[string]any    `json:"responses"`
	PendingLinkToken    *string           `json:"pendingLinkToken"`
	NeutralBlockVisited bool              `json:"neutralBlockVisited"`
}

// Empty returns a fresh idle draft.
func Empty() Draft {
	return Draft{
		Version:   SchemaVersion,
		Stage:     flow.StageIdle,
		Responses: map[string]any{},
	}
}

// Clone returns a copy that shares no mutable state with d.
// Response values are copied shallowly.
func (d Draft) Clone() Draft {
	out := d
	if d.Path != nil {
		p := *d.Path
		out.Path = &p
	}
	if d.Entry != nil {
		e := *d.Entry
		out.Entry = &e
	}
	if d.CurrentStepID != nil {
		s := *d.CurrentStepID
		out.CurrentStepID = &s
	}
	if d.PendingLinkToken != nil {
		t := *d.PendingLinkToken
		out.PendingLinkToken = &t
	}
	out.Responses = make(map[string]any, len(d.Responses))
	maps.Copy(out.Responses, d.Responses)
	return out
}

// StepID returns the current step id or empty string.
func (d Draft) StepID() string {
	if d.CurrentStepID == nil {
		return ""
	}
	return *d.CurrentStepID
}

// ActivePath returns the selected path or empty string.
func (d Draft) ActivePath() flow.Path {
	if d.Path == nil {
		return ""
	}
	return *d.Path
}

// MergeResponses applies one step's field-set update.
func (d *Draft) MergeResponses(fields map[string]any) {
	if d.Responses == nil {
		d.Responses = make(map[string]any, len(fields))
	}
	maps.Copy(d.Responses, fields)
}

// MoveTo applies a resolved location. Moving to the neutral block marks it
// visited and keeps CurrentStepID as the step the user left from.
func (d *Draft) MoveTo(loc flow.Location) {
	d.Stage = loc.Stage
	switch loc.Stage {
	case flow.StagePath:
		id := loc.StepID
		d.CurrentStepID = &id
	case flow.StageNeutral:
		d.NeutralBlockVisited = true
	}
}
