// Package app holds the practice page state and the single dispatcher that
// applies events to it. State is a value: every event produces a new State and
// the filtered view is computed from it by a pure function.
package app

import (
	"sentencecards/internal/groups"
	"sentencecards/internal/sentences"
	"sentencecards/internal/table"
)

// State is everything the practice page shows.
type State struct {
	GroupID string
	Level   sentences.Level

	// Records holds every parsed row of the group, unfiltered. The slice is
	// shared between states and never modified.
	Records []table.Record
	Loaded  bool

	// Index is nil until the group index has loaded.
	Index    *groups.Index
	NavReady bool

	// Playing is the level whose recording is playing, or "".
	Playing sentences.Level

	// Err is a terminal load failure shown instead of the records.
	Err error

	// Alert is a dismissible message (audio failures).
	Alert string
}

// NewState returns the initial state for a group.
func NewState(groupID string, level sentences.Level) State {
	if !level.Valid() {
		level = sentences.LevelBoth
	}
	return State{GroupID: groupID, Level: level}
}

// View is the render-ready projection of a State.
type View struct {
	GroupID string
	Title   string
	Level   sentences.Level

	Sentences []sentences.Sentence
	Counts    sentences.Counts

	// Empty means the placeholder message is shown instead of sentences.
	Empty   bool
	Loading bool

	Prev, Next *groups.Group

	Playing sentences.Level
	Err     error
	Alert   string
}

// View computes what to display. It does not modify s.
func (s State) View() View {
	v := View{
		GroupID: s.GroupID,
		Title:   s.GroupID,
		Level:   s.Level,
		Playing: s.Playing,
		Err:     s.Err,
		Alert:   s.Alert,
		Loading: !s.Loaded && s.Err == nil,
	}
	if s.Index != nil {
		if g, ok := s.Index.Get(s.GroupID); ok && g.Title != "" {
			v.Title = g.Title
		}
		v.Prev, v.Next, _ = s.Index.Neighbors(s.GroupID)
	}
	if s.Loaded {
		v.Sentences = sentences.FromRecords(sentences.Filter(s.Records, s.Level))
		v.Counts = sentences.Count(s.Records)
		v.Empty = len(v.Sentences) == 0
	}
	return v
}
