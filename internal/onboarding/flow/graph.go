package flow

import (
	"fmt"
	"slices"
)

// Graph is the immutable step graph for paths A, B and C.
//
// Invariants:
//   - every path in Paths() has at least one step
//   - step ids are unique within a path and Step.Position equals its index
//   - every option targeting StagePath names a step of the same path
//   - neutral and registration targets carry no step id
type Graph struct {
	paths map[Path][]Step
}

// NewGraph builds a graph from per-path ordered step lists and validates it.
// Positions and owning paths are assigned from the table layout.
func NewGraph(table map[Path][]Step) (*Graph, error) {
	g := &Graph{paths: make(map[Path][]Step, len(table))}
	for path, steps := range table {
		if !path.IsValid() {
			return nil, fmt.Errorf("%w: path %q", ErrInvalidGraph, path)
		}
		list := make([]Step, 0, len(steps))
		for i, step := range steps {
			step = step.clone()
			step.Path = path
			step.Position = i
			list = append(list, step)
		}
		g.paths[path] = list
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNewGraph panics if the table is inconsistent. Only used for static tables.
func MustNewGraph(table map[Path][]Step) *Graph {
	g, err := NewGraph(table)
	if err != nil {
		panic(err)
	}
	return g
}

var defaultGraph = MustNewGraph(defaultSteps())

// DefaultGraph returns the alternate onboarding step graph.
func DefaultGraph() *Graph {
	return defaultGraph
}

// Validate checks the graph invariants.
func (g *Graph) Validate() error {
	for _, path := range Paths() {
		steps := g.paths[path]
		if len(steps) == 0 {
			return fmt.Errorf("%w: path %s has no steps", ErrInvalidGraph, path)
		}
		seen := make(map[string]struct{}, len(steps))
		for _, step := range steps {
			if step.ID == "" {
				return fmt.Errorf("%w: path %s has a step without id", ErrInvalidGraph, path)
			}
			if _, dup := seen[step.ID]; dup {
				return fmt.Errorf("%w: duplicate step %s in path %s", ErrInvalidGraph, step.ID, path)
			}
			seen[step.ID] = struct{}{}
		}
		for _, step := range steps {
			if len(step.Options) == 0 {
				return fmt.Errorf("%w: step %s has no options", ErrInvalidGraph, step.ID)
			}
			for _, opt := range step.Options {
				if err := g.validateTarget(path, step.ID, opt); err != nil {
					return err
				}
			}
			if step.ResumeOptionID != "" {
				if _, ok := step.Option(step.ResumeOptionID); !ok {
					return fmt.Errorf("%w: step %s resumes through undeclared option %s",
						ErrInvalidGraph, step.ID, step.ResumeOptionID)
				}
			}
		}
	}
	return nil
}

func (g *Graph) validateTarget(path Path, stepID string, opt Option) error {
	switch opt.Target.Stage {
	case StagePath:
		if g.StepIndex(path, opt.Target.StepID) < 0 {
			return fmt.Errorf("%w: option %s on step %s targets unknown step %q in path %s",
				ErrInvalidGraph, opt.ID, stepID, opt.Target.StepID, path)
		}
	case StageNeutral, StageRegistration:
		if opt.Target.StepID != "" {
			return fmt.Errorf("%w: option %s on step %s sets a step id on a %s target",
				ErrInvalidGraph, opt.ID, stepID, opt.Target.Stage)
		}
	default:
		return fmt.Errorf("%w: option %s on step %s targets stage %q",
			ErrInvalidGraph, opt.ID, stepID, opt.Target.Stage)
	}
	return nil
}

// Steps returns a copy of the ordered steps of a path.
func (g *Graph) Steps(path Path) []Step {
	steps := g.paths[path]
	out := make([]Step, 0, len(steps))
	for _, step := range steps {
		out = append(out, step.clone())
	}
	return out
}

// FirstStep returns the entry step of a path.
func (g *Graph) FirstStep(path Path) (Step, bool) {
	steps := g.paths[path]
	if len(steps) == 0 {
		return Step{}, false
	}
	return steps[0].clone(), true
}

// StepByID looks a step up within one path. A missing step is a normal
// outcome, not an error.
func (g *Graph) StepByID(path Path, stepID string) (Step, bool) {
	idx := g.StepIndex(path, stepID)
	if idx < 0 {
		return Step{}, false
	}
	return g.paths[path][idx].clone(), true
}

// StepIndex returns the position of a step in its path, or -1.
func (g *Graph) StepIndex(path Path, stepID string) int {
	return slices.IndexFunc(g.paths[path], func(s Step) bool {
		return s.ID == stepID
	})
}

// Progress returns how far through the path a step is, as a percentage.
// Unknown steps report 0.
func (g *Graph) Progress(path Path, stepID string) float64 {
	idx := g.StepIndex(path, stepID)
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(g.paths[path])) * 100
}

// Resolve looks up the step and resolves the chosen option.
func (g *Graph) Resolve(path Path, stepID, optionID string) (Location, error) {
	step, ok := g.StepByID(path, stepID)
	if !ok {
		return Location{}, fmt.Errorf("%w: %s in path %s", ErrUnknownStep, stepID, path)
	}
	return ResolveNextLocation(path, step, optionID)
}
