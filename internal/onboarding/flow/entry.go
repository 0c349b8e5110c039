package flow

import "fmt"

var entryPaths = map[EntryAnswerID]Path{
	EntryAnswer1: PathA,
	EntryAnswer2: PathB,
	EntryAnswer3: PathB,
	EntryAnswer4: PathB,
	EntryAnswer5: PathC,
}

// EntryAnswerIDs lists the valid entry answers in display order.
func EntryAnswerIDs() []EntryAnswerID {
	return []EntryAnswerID{EntryAnswer1, EntryAnswer2, EntryAnswer3, EntryAnswer4, EntryAnswer5}
}

// PathForEntryAnswer maps an entry answer to its path. Unknown ids are
// rejected with ErrInvalidEntryAnswer, never defaulted.
func PathForEntryAnswer(id EntryAnswerID) (Path, error) {
	path, ok := entryPaths[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryAnswer, id)
	}
	return path, nil
}

// PathForEntryIndex maps the numeric form (1-5) of an entry answer.
func PathForEntryIndex(n int) (Path, error) {
	return PathForEntryAnswer(EntryAnswerID(fmt.Sprintf("entry_%d", n)))
}

// NewEntryAnswer pairs an entry answer id with its mapped path.
func NewEntryAnswer(id EntryAnswerID) (EntryAnswer, error) {
	path, err := PathForEntryAnswer(id)
	if err != nil {
		return EntryAnswer{}, err
	}
	return EntryAnswer{AnswerID: id, Path: path}, nil
}

// Matches reports whether the entry answer maps to its declared path.
func (e EntryAnswer) Matches() bool {
	path, err := PathForEntryAnswer(e.AnswerID)
	return err == nil && path == e.Path
}
