package flow

import "errors"

var (
	// ErrInvalidEntryAnswer is returned for entry answer ids outside entry_1..entry_5.
	ErrInvalidEntryAnswer = errors.New("invalid entry answer")
	// ErrInvalidPath is returned when a raw value is not one of A, B or C.
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnknownStep is returned when a step id does not exist within a path.
	ErrUnknownStep = errors.New("unknown step")
	// ErrUnknownOption signals a caller offered an option the step never declared.
	ErrUnknownOption = errors.New("unknown transition option")
	// ErrInvalidGraph is returned when a step table breaks the graph invariants.
	ErrInvalidGraph = errors.New("invalid step graph")
)
