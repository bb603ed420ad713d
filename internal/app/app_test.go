package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sentencecards/internal/groups"
	"sentencecards/internal/sentences"
	"sentencecards/internal/source"
	"sentencecards/internal/table"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleCSV = "prompt,chinese,level\n" +
	"A,甲,advanced\n" +
	"I,乙,intermediate\n"

const sampleIndex = `[
  {"id": "g1", "title": "Greetings"},
  {"id": "g2", "title": "Food"},
  {"id": "g3", "title": "Travel"}
]`

// memSource serves content from a map.
type memSource struct {
	mu      sync.Mutex
	files   map[string]string
	fetched []string
}

func (m *memSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, name)
	m.mu.Unlock()
	if v, ok := m.files[name]; ok {
		return []byte(v), nil
	}
	return nil, &source.FetchError{Source: "mem", Name: name, Err: source.ErrNotFound}
}

func (m *memSource) String() string { return "mem" }

func loadedState(t *testing.T, level sentences.Level) State {
	t.Helper()
	s := NewState("g2", level)
	return Reduce(s, DataLoaded{Records: table.Parse(sampleCSV)})
}

func TestReduce_DataLoadedBoth(t *testing.T) {
	v := loadedState(t, sentences.LevelBoth).View()
	require.Len(t, v.Sentences, 2)
	assert.Equal(t, "I", v.Sentences[0].Prompt)
	assert.Equal(t, "A", v.Sentences[1].Prompt)
	assert.False(t, v.Empty)
	assert.False(t, v.Loading)
	assert.Equal(t, 2, v.Counts[sentences.LevelBoth])
}

func TestReduce_LevelChangedRefilters(t *testing.T) {
	s := loadedState(t, sentences.LevelBoth)
	s = Reduce(s, LevelChanged{Level: sentences.LevelAdvanced})

	v := s.View()
	require.Len(t, v.Sentences, 1)
	assert.Equal(t, "A", v.Sentences[0].Prompt)
	assert.Equal(t, sentences.LevelAdvanced, v.Level)
}

func TestReduce_InvalidLevelIgnored(t *testing.T) {
	s := loadedState(t, sentences.LevelIntermediate)
	s = Reduce(s, LevelChanged{Level: "expert"})
	assert.Equal(t, sentences.LevelIntermediate, s.Level)
}

func TestReduce_EmptyLevelShowsPlaceholder(t *testing.T) {
	s := NewState("g1", sentences.LevelAdvanced)
	s = Reduce(s, DataLoaded{Records: table.Parse("prompt,chinese,level\nx,y,intermediate")})
	v := s.View()
	assert.True(t, v.Empty)
	assert.Empty(t, v.Sentences)
}

func TestReduce_DoesNotMutatePrevious(t *testing.T) {
	before := loadedState(t, sentences.LevelBoth)
	after := Reduce(before, LevelChanged{Level: sentences.LevelAdvanced})
	assert.Equal(t, sentences.LevelBoth, before.Level)
	assert.Equal(t, sentences.LevelAdvanced, after.Level)
	assert.Len(t, before.View().Sentences, 2)
}

func TestReduce_LoadFailed(t *testing.T) {
	s := Reduce(NewState("g1", sentences.LevelBoth), LoadFailed{Err: errors.New("boom")})
	v := s.View()
	assert.EqualError(t, v.Err, "boom")
	assert.False(t, v.Loading)
	assert.Empty(t, v.Sentences)
	assert.False(t, v.Empty)
}

func TestReduce_Playback(t *testing.T) {
	s := loadedState(t, sentences.LevelAdvanced)
	s = Reduce(s, PlaybackStarted{Level: sentences.LevelAdvanced})
	assert.Equal(t, sentences.LevelAdvanced, s.Playing)

	// A stale stop for another level leaves the current playback alone.
	s = Reduce(s, PlaybackStopped{Level: sentences.LevelIntermediate})
	assert.Equal(t, sentences.LevelAdvanced, s.Playing)

	s = Reduce(s, PlaybackFailed{Level: sentences.LevelAdvanced, Err: errors.New("decode error")})
	assert.Equal(t, sentences.Level(""), s.Playing)
	assert.Contains(t, s.Alert, "decode error")
	assert.Len(t, s.View().Sentences, 1, "audio failure does not affect records")

	s = Reduce(s, AlertDismissed{})
	assert.Empty(t, s.Alert)
}

func TestReduce_NavigationReady(t *testing.T) {
	idx, err := groups.ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)

	s := Reduce(loadedState(t, sentences.LevelBoth), NavigationReady{Index: idx})
	v := s.View()
	assert.True(t, s.NavReady)
	assert.Equal(t, "Food", v.Title)
	require.NotNil(t, v.Prev)
	require.NotNil(t, v.Next)
	assert.Equal(t, "g1", v.Prev.ID)
	assert.Equal(t, "g3", v.Next.ID)
}

func TestView_BeforeLoad(t *testing.T) {
	v := NewState("g1", "").View()
	assert.True(t, v.Loading)
	assert.Equal(t, sentences.LevelBoth, v.Level)
	assert.Nil(t, v.Prev)
	assert.Nil(t, v.Next)
}

// fakeAudio mimics the controller's toggle rules.
type fakeAudio struct {
	playing sentences.Level
	fail    error
	stopped bool
}

func (f *fakeAudio) Toggle(_ context.Context, level sentences.Level) (bool, error) {
	if !level.HasAudio() {
		return false, fmt.Errorf("no audio for level %s", level)
	}
	if f.playing == level {
		f.playing = ""
		return false, nil
	}
	f.playing = ""
	if f.fail != nil {
		return false, f.fail
	}
	f.playing = level
	return true, nil
}

func (f *fakeAudio) Playing() (sentences.Level, bool) { return f.playing, f.playing != "" }
func (f *fakeAudio) Stop()                            { f.playing = ""; f.stopped = true }

func TestDispatcher_RendersEveryEvent(t *testing.T) {
	var views []View
	d := NewDispatcher(context.Background(), NewState("g2", sentences.LevelBoth), RenderFunc(func(v View) {
		views = append(views, v)
	}))

	d.Dispatch(DataLoaded{Records: table.Parse(sampleCSV)})
	d.Dispatch(LevelChanged{Level: sentences.LevelIntermediate})

	require.Len(t, views, 2)
	assert.Len(t, views[0].Sentences, 2)
	assert.Len(t, views[1].Sentences, 1)
	assert.Equal(t, sentences.LevelIntermediate, d.State().Level)
}

func TestDispatcher_PlayToggled(t *testing.T) {
	d := NewDispatcher(context.Background(), loadedState(t, sentences.LevelAdvanced), nil)
	fa := &fakeAudio{}
	d.AttachAudio(fa)

	s := d.Dispatch(PlayToggled{})
	assert.Equal(t, sentences.LevelAdvanced, s.Playing)

	s = d.Dispatch(PlayToggled{})
	assert.Equal(t, sentences.Level(""), s.Playing)

	d.Dispatch(PlayToggled{})
	d.Dispatch(LevelChanged{Level: sentences.LevelIntermediate})
	s = d.Dispatch(PlayToggled{})
	assert.Equal(t, sentences.LevelIntermediate, s.Playing, "switching level replaces playback")

	d.Close()
	assert.True(t, fa.stopped)
}

func TestDispatcher_PlayToggledFailureRaisesAlert(t *testing.T) {
	d := NewDispatcher(context.Background(), loadedState(t, sentences.LevelAdvanced), nil)
	d.AttachAudio(&fakeAudio{fail: errors.New("no such file")})

	s := d.Dispatch(PlayToggled{})
	assert.Empty(t, s.Playing)
	assert.Contains(t, s.Alert, "no such file")
	assert.Len(t, s.View().Sentences, 1)

	s = d.Dispatch(AlertDismissed{})
	assert.Empty(t, s.Alert)
}

func TestDispatcher_BothHasNoAudio(t *testing.T) {
	d := NewDispatcher(context.Background(), loadedState(t, sentences.LevelBoth), nil)
	d.AttachAudio(&fakeAudio{})
	s := d.Dispatch(PlayToggled{})
	assert.Empty(t, s.Playing)
	assert.Contains(t, s.Alert, "no audio")
}

func TestDispatcher_NoPlayer(t *testing.T) {
	d := NewDispatcher(context.Background(), loadedState(t, sentences.LevelAdvanced), nil)
	s := d.Dispatch(PlayToggled{})
	assert.Contains(t, s.Alert, ErrNoPlayer.Error())
}

func TestDispatcher_AudioFinished(t *testing.T) {
	d := NewDispatcher(context.Background(), loadedState(t, sentences.LevelAdvanced), nil)
	d.Dispatch(PlaybackStarted{Level: sentences.LevelAdvanced})

	d.AudioFinished(sentences.LevelAdvanced, nil)
	assert.Empty(t, d.State().Playing)
	assert.Empty(t, d.State().Alert)

	d.Dispatch(PlaybackStarted{Level: sentences.LevelAdvanced})
	d.AudioFinished(sentences.LevelAdvanced, errors.New("exit status 1"))
	assert.Empty(t, d.State().Playing)
	assert.Contains(t, d.State().Alert, "exit status 1")
}

func TestLoad_MissingGroupID(t *testing.T) {
	src := &memSource{}
	err := Load(context.Background(), src, "", func(Event) { t.Fatal("unexpected event") })
	require.ErrorIs(t, err, ErrMissingGroupID)
	assert.Empty(t, src.fetched, "nothing is fetched without a group id")
}

func TestLoad_Success(t *testing.T) {
	src := &memSource{files: map[string]string{
		source.SentencesPath("g2"): sampleCSV,
		source.IndexPath:           sampleIndex,
	}}
	d := NewDispatcher(context.Background(), NewState("g2", sentences.LevelBoth), nil)

	require.NoError(t, Load(context.Background(), src, "g2", func(ev Event) { d.Dispatch(ev) }))

	s := d.State()
	assert.True(t, s.Loaded)
	assert.True(t, s.NavReady)
	assert.Len(t, s.View().Sentences, 2)
	assert.Equal(t, "g3", s.View().Next.ID)
}

func TestLoad_SentenceFailure(t *testing.T) {
	src := &memSource{files: map[string]string{source.IndexPath: sampleIndex}}
	d := NewDispatcher(context.Background(), NewState("g2", sentences.LevelBoth), nil)

	require.NoError(t, Load(context.Background(), src, "g2", func(ev Event) { d.Dispatch(ev) }))

	s := d.State()
	require.Error(t, s.Err)
	assert.ErrorIs(t, s.Err, source.ErrNotFound)
	assert.False(t, s.Loaded)
	assert.True(t, s.NavReady, "navigation is independent of the sentence load")
}

func TestLoad_IndexFailureLeavesNavigationAbsent(t *testing.T) {
	src := &memSource{files: map[string]string{source.SentencesPath("g2"): sampleCSV}}
	var events []Event
	var mu sync.Mutex
	require.NoError(t, Load(context.Background(), src, "g2", func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))

	require.Len(t, events, 1)
	assert.IsType(t, DataLoaded{}, events[0])
}

func TestLoadIndex_Invalid(t *testing.T) {
	src := &memSource{files: map[string]string{source.IndexPath: `{"not": "a list"}`}}
	_, ok := LoadIndex(context.Background(), src)
	assert.False(t, ok)
}

func TestReduce_GroupSelectedKeepsLevelAndNavigation(t *testing.T) {
	idx, err := groups.ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)

	s := loadedState(t, sentences.LevelAdvanced)
	s = Reduce(s, NavigationReady{Index: idx})
	s = Reduce(s, GroupSelected{GroupID: "g3"})

	assert.Equal(t, "g3", s.GroupID)
	assert.Equal(t, sentences.LevelAdvanced, s.Level)
	assert.True(t, s.NavReady)
	assert.False(t, s.Loaded)
	assert.Nil(t, s.Records)
	assert.True(t, s.View().Loading)
	assert.Equal(t, "g2", s.View().Prev.ID)
}

func TestReduce_StaleLoadDropped(t *testing.T) {
	s := NewState("g3", sentences.LevelBoth)
	s = Reduce(s, DataLoaded{GroupID: "g2", Records: table.Parse(sampleCSV)})
	assert.False(t, s.Loaded)

	s = Reduce(s, LoadFailed{GroupID: "g2", Err: errors.New("late")})
	assert.NoError(t, s.Err)

	s = Reduce(s, DataLoaded{GroupID: "g3", Records: table.Parse(sampleCSV)})
	assert.True(t, s.Loaded)
}
