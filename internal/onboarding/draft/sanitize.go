package draft

import (
	"bytes"
	"encoding/json"

	"onboard-gateway/internal/onboarding/flow"
)

// Reset reasons, used as the metrics label and in debug logs.
const (
	reasonMalformed = "malformed"
	reasonVersion   = "version_mismatch"
	reasonStage     = "invalid_stage"
	reasonPath      = "invalid_path"
	reasonEntry     = "entry_mismatch"
	reasonStep      = "unknown_step"
)

// stored mirrors Draft but keeps pendingLinkToken raw so a wrongly typed
// token can be dropped without discarding the whole draft.
type stored struct {
	Version             string            `json:"version"`
	Stage               flow.Stage        `json:"stage"`
	Path                *flow.Path        `json:"path"`
	Entry               *flow.EntryAnswer `json:"entry"`
	CurrentStepID       *string           `json:"currentStepId"`
	Responses           map[string]any    `json:"responses"`
	PendingLinkToken    json.RawMessage   `json:"pendingLinkToken"`
	NeutralBlockVisited bool              `json:"neutralBlockVisited"`
}

// decode parses and sanitizes a stored draft. A non-empty reason means the
// payload must be discarded in favour of Empty.
func decode(raw []byte, graph *flow.Graph) (Draft, string) {
	var s stored
	if err := json.Unmarshal(raw, &s); err != nil {
		return Empty(), reasonMalformed
	}
	if s.Version != SchemaVersion {
		return Empty(), reasonVersion
	}
	if !s.Stage.IsValid() {
		return Empty(), reasonStage
	}
	if s.Path != nil && !s.Path.IsValid() {
		return Empty(), reasonPath
	}
	if s.Entry != nil {
		if !s.Entry.Matches() || (s.Path != nil && s.Entry.Path != *s.Path) {
			return Empty(), reasonEntry
		}
	}

	switch s.Stage {
	case flow.StagePath:
		if s.Path == nil || s.CurrentStepID == nil {
			return Empty(), reasonStep
		}
		if _, ok := graph.StepByID(*s.Path, *s.CurrentStepID); !ok {
			return Empty(), reasonStep
		}
	case flow.StageNeutral, flow.StageRegistration:
		if s.Path == nil {
			return Empty(), reasonPath
		}
		if s.CurrentStepID != nil {
			if _, ok := graph.StepByID(*s.Path, *s.CurrentStepID); !ok {
				return Empty(), reasonStep
			}
		}
	}

	d := Draft{
		Version:             SchemaVersion,
		Stage:               s.Stage,
		Path:                s.Path,
		Entry:               s.Entry,
		CurrentStepID:       s.CurrentStepID,
		Responses:           s.Responses,
		PendingLinkToken:    decodeLinkToken(s.PendingLinkToken),
		NeutralBlockVisited: s.NeutralBlockVisited,
	}
	if d.Responses == nil {
		d.Responses = map[string]any{}
	}
	return d, ""
}

// decodeLinkToken coerces anything but a JSON string to nil.
func decodeLinkToken(raw json.RawMessage) *string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil
	}
	return &token
}
