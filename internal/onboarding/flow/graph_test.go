package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathForEntryAnswer(t *testing.T) {
	t.Run("maps the five entry answers", func(t *testing.T) {
		expected := map[EntryAnswerID]Path{
			EntryAnswer1: PathA,
			EntryAnswer2: PathB,
			EntryAnswer3: PathB,
			EntryAnswer4: PathB,
			EntryAnswer5: PathC,
		}
		for id, want := range expected {
			got, err := PathForEntryAnswer(id)
			require.NoError(t, err, id)
			assert.Equal(t, want, got, id)
		}
	})

	t.Run("maps numeric ids", func(t *testing.T) {
		want := []Path{PathA, PathB, PathB, PathB, PathC}
		for i, p := range want {
			got, err := PathForEntryIndex(i + 1)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		for _, id := range []EntryAnswerID{"", "entry_0", "entry_6", "ENTRY_1", "1"} {
			_, err := PathForEntryAnswer(id)
			assert.ErrorIs(t, err, ErrInvalidEntryAnswer, id)
		}
		_, err := PathForEntryIndex(0)
		assert.ErrorIs(t, err, ErrInvalidEntryAnswer)
		_, err = PathForEntryIndex(6)
		assert.ErrorIs(t, err, ErrInvalidEntryAnswer)
	})
}

func TestEntryAnswerMatches(t *testing.T) {
	entry, err := NewEntryAnswer(EntryAnswer5)
	require.NoError(t, err)
	assert.True(t, entry.Matches())
	assert.False(t, EntryAnswer{AnswerID: EntryAnswer5, Path: PathA}.Matches())
	assert.False(t, EntryAnswer{AnswerID: "entry_9", Path: PathA}.Matches())
}

func TestDefaultGraphLookups(t *testing.T) {
	g := DefaultGraph()
	require.NoError(t, g.Validate())

	t.Run("finds steps within their path", func(t *testing.T) {
		step, ok := g.StepByID(PathB, "B4")
		require.True(t, ok)
		assert.Equal(t, PathB, step.Path)
		assert.Equal(t, 3, step.Position)
	})

	t.Run("step ids are scoped per path", func(t *testing.T) {
		_, ok := g.StepByID(PathA, "B4")
		assert.False(t, ok)
		assert.Equal(t, -1, g.StepIndex(PathA, "B4"))
	})

	t.Run("index zero is distinct from not found", func(t *testing.T) {
		assert.Equal(t, 0, g.StepIndex(PathC, "C1"))
		assert.Equal(t, -1, g.StepIndex(PathC, "C9"))
		assert.Equal(t, -1, g.StepIndex("Z", "C1"))
	})

	t.Run("first step of each path", func(t *testing.T) {
		for path, id := range map[Path]string{PathA: "A1", PathB: "B1", PathC: "C1"} {
			step, ok := g.FirstStep(path)
			require.True(t, ok)
			assert.Equal(t, id, step.ID)
		}
	})

	t.Run("progress is derived from position", func(t *testing.T) {
		assert.InDelta(t, 25.0, g.Progress(PathA, "A1"), 0.001)
		assert.InDelta(t, 100.0, g.Progress(PathB, "B5"), 0.001)
		assert.Zero(t, g.Progress(PathB, "nope"))
	})

	t.Run("returned steps cannot mutate the graph", func(t *testing.T) {
		step, ok := g.StepByID(PathC, "C2")
		require.True(t, ok)
		step.RequiredFields[0] = "tampered"
		step.Options[0].Target = Registration()

		again, _ := g.StepByID(PathC, "C2")
		assert.Equal(t, FieldRelationshipToPerson, again.RequiredFields[0])
		assert.Equal(t, PathStep("C3"), again.Options[0].Target)
	})
}

func TestNewGraphRejectsBrokenTables(t *testing.T) {
	base := func() map[Path][]Step {
		return map[Path][]Step{
			PathA: {{ID: "A1", Options: []Option{{ID: OptionFinish, Target: Registration()}}}},
			PathB: {{ID: "B1", Options: []Option{{ID: OptionFinish, Target: Registration()}}}},
			PathC: {{ID: "C1", Options: []Option{{ID: OptionFinish, Target: Registration()}}}},
		}
	}

	_, err := NewGraph(base())
	require.NoError(t, err)

	t.Run("target outside the path", func(t *testing.T) {
		table := base()
		table[PathA][0].Options = []Option{next("B1")}
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("missing path", func(t *testing.T) {
		table := base()
		delete(table, PathC)
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("duplicate step id", func(t *testing.T) {
		table := base()
		table[PathB] = append(table[PathB], table[PathB][0])
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("step id on a neutral target", func(t *testing.T) {
		table := base()
		table[PathA][0].Options = []Option{{ID: OptionStartStorytelling, Target: Location{Stage: StageNeutral, StepID: "A1"}}}
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("idle is not a target", func(t *testing.T) {
		table := base()
		table[PathA][0].Options = []Option{{ID: "x", Target: Location{Stage: StageIdle}}}
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("resume through undeclared option", func(t *testing.T) {
		table := base()
		table[PathA][0].ResumeOptionID = OptionContinueGuided
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("unknown path key", func(t *testing.T) {
		table := base()
		table["D"] = table[PathA]
		_, err := NewGraph(table)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("C")
	require.NoError(t, err)
	assert.Equal(t, PathC, p)

	_, err = ParsePath("c")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
