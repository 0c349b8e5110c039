package flow

import (
	"fmt"
	"slices"
)

// Path is one of the three branching question sequences a user is routed into.
type Path string

const (
	PathA Path = "A"
	PathB Path = "B"
	PathC Path = "C"
)

// Paths lists every valid path in display order.
func Paths() []Path {
	return []Path{PathA, PathB, PathC}
}

func (p Path) IsValid() bool {
	switch p {
	case PathA, PathB, PathC:
		return true
	}
	return false
}

func (p Path) String() string {
	return string(p)
}

// ParsePath validates a raw path value.
func ParsePath(s string) (Path, error) {
	p := Path(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, s)
	}
	return p, nil
}

// Stage is the coarse phase of the onboarding flow.
type Stage string

const (
	StageIdle         Stage = "idle"
	StagePath         Stage = "path"
	StageNeutral      Stage = "neutral"
	StageRegistration Stage = "registration"
)

func (s Stage) IsValid() bool {
	switch s {
	case StageIdle, StagePath, StageNeutral, StageRegistration:
		return true
	}
	return false
}

// Location is where a transition lands. StepID is only set for StagePath.
type Location struct {
	Stage  Stage  `json:"stage"`
	StepID string `json:"stepId,omitempty"`
}

// PathStep targets a step within the current path.
func PathStep(stepID string) Location {
	return Location{Stage: StagePath, StepID: stepID}
}

// Neutral targets the shared cross-path block.
func Neutral() Location {
	return Location{Stage: StageNeutral}
}

// Registration targets the terminal hand-off to account creation.
func Registration() Location {
	return Location{Stage: StageRegistration}
}

// EntryAnswerID identifies one of the fixed entry answers (entry_1..entry_5).
type EntryAnswerID string

const (
	EntryAnswer1 EntryAnswerID = "entry_1"
	EntryAnswer2 EntryAnswerID = "entry_2"
	EntryAnswer3 EntryAnswerID = "entry_3"
	EntryAnswer4 EntryAnswerID = "entry_4"
	EntryAnswer5 EntryAnswerID = "entry_5"
)

// EntryAnswer pairs the chosen entry answer with the path it implies.
type EntryAnswer struct {
	AnswerID EntryAnswerID `json:"answerId"`
	Path     Path          `json:"path"`
}

// Transition option ids used by the step table.
const (
	OptionNext              = "next"
	OptionStartStorytelling = "start_storytelling"
	OptionGoRegistration    = "go_registration"
	OptionJumpToNeutral     = "jump_to_neutral"
	OptionContinueGuided    = "continue_guided"
	OptionFinish            = "finish"
)

// Option is a named transition declared on a step.
type Option struct {
	ID     string   `json:"id"`
	Target Location `json:"target"`
}

// Step is a single question screen within a path.
//
// ResumeOptionID names the option whose target is used when a user leaves the
// neutral block and asks to continue where they jumped off. Empty means the
// neutral block exits to registration.
type Step struct {
	ID             string   `json:"id"`
	Path           Path     `json:"path"`
	Position       int      `json:"position"`
	RequiredFields []string `json:"requiredFields"`
	Options        []Option `json:"options"`
	ResumeOptionID string   `json:"-"`
}

// Option looks up a declared option by id.
func (s Step) Option(id string) (Option, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionIDs returns the declared option ids in order.
func (s Step) OptionIDs() []string {
	ids := make([]string, 0, len(s.Options))
	for _, opt := range s.Options {
		ids = append(ids, opt.ID)
	}
	return ids
}

func (s Step) clone() Step {
	s.RequiredFields = slices.Clone(s.RequiredFields)
	s.Options = slices.Clone(s.Options)
	return s
}
