package app

import (
	"sentencecards/internal/groups"
	"sentencecards/internal/sentences"
	"sentencecards/internal/table"
)

// Event is the closed set of things that change a State.
type Event interface {
	isEvent()
}

// DataLoaded carries the parsed sentence file. A non-empty GroupID that does
// not match the state's group marks a stale result, which is dropped.
type DataLoaded struct {
	GroupID string
	Records []table.Record
}

// LoadFailed reports that the sentence file could not be fetched.
type LoadFailed struct {
	GroupID string
	Err     error
}

// GroupSelected switches to another group. Level and navigation are kept;
// records are cleared until the new group loads.
type GroupSelected struct{ GroupID string }

// LevelChanged selects a difficulty level.
type LevelChanged struct{ Level sentences.Level }

// PlayToggled asks to start or stop the current level's recording.
type PlayToggled struct{}

// PlaybackStarted reports that a level's recording is playing.
type PlaybackStarted struct{ Level sentences.Level }

// PlaybackStopped reports that playback of Level ended. An empty Level means
// whatever was playing.
type PlaybackStopped struct{ Level sentences.Level }

// PlaybackFailed reports an audio failure for Level; it raises an alert.
type PlaybackFailed struct {
	Level sentences.Level
	Err   error
}

// AlertDismissed clears the alert.
type AlertDismissed struct{}

// NavigationReady carries the group index.
type NavigationReady struct{ Index *groups.Index }

func (DataLoaded) isEvent()      {}
func (LoadFailed) isEvent()      {}
func (LevelChanged) isEvent()    {}
func (PlayToggled) isEvent()     {}
func (PlaybackStarted) isEvent() {}
func (PlaybackStopped) isEvent() {}
func (PlaybackFailed) isEvent()  {}
func (AlertDismissed) isEvent()  {}
func (NavigationReady) isEvent() {}
func (GroupSelected) isEvent()   {}

// Reduce applies ev to s and returns the new state. It has no side effects;
// PlayToggled is handled by the Dispatcher, which reports the outcome with
// PlaybackStarted, PlaybackStopped or PlaybackFailed.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case DataLoaded:
		if stale(s, e.GroupID) {
			return s
		}
		s.Records = e.Records
		s.Loaded = true
		s.Err = nil
	case LoadFailed:
		if stale(s, e.GroupID) {
			return s
		}
		s.Err = e.Err
		s.Loaded = false
		s.Records = nil
	case LevelChanged:
		if e.Level.Valid() {
			s.Level = e.Level
		}
	case PlaybackStarted:
		s.Playing = e.Level
		s.Alert = ""
	case PlaybackStopped:
		if e.Level == "" || e.Level == s.Playing {
			s.Playing = ""
		}
	case PlaybackFailed:
		if e.Level == s.Playing {
			s.Playing = ""
		}
		if e.Err != nil {
			s.Alert = "Audio playback failed: " + e.Err.Error()
		}
	case AlertDismissed:
		s.Alert = ""
	case NavigationReady:
		s.Index = e.Index
		s.NavReady = e.Index != nil
	case GroupSelected:
		next := NewState(e.GroupID, s.Level)
		next.Index, next.NavReady = s.Index, s.NavReady
		next.Alert = s.Alert
		return next
	}
	return s
}

func stale(s State, groupID string) bool {
	return groupID != "" && groupID != s.GroupID
}
