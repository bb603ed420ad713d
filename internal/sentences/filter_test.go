package sentences

import (
	"errors"
	"testing"

	"sentencecards/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) []table.Record {
	t.Helper()
	return table.Parse(text)
}

func prompts(records []table.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Get(FieldPrompt)
	}
	return out
}

func TestFilter_BothPutsIntermediateFirst(t *testing.T) {
	records := parse(t, "prompt,chinese,level\n"+
		"a1,x,advanced\n"+
		"i1,x,intermediate\n"+
		"a2,x,advanced\n")

	got := Filter(records, LevelBoth)
	assert.Equal(t, []string{"i1", "a1", "a2"}, prompts(got))
	for i, want := range []Level{LevelIntermediate, LevelAdvanced, LevelAdvanced} {
		assert.Equal(t, want, RecordLevel(got[i]))
	}
}

func TestFilter_SpecificLevelNormalizes(t *testing.T) {
	records := parse(t, "prompt,chinese,level\n"+
		"keep1,x, Intermediate \n"+
		"drop1,x,Intermediate2\n"+
		"keep2,x,INTERMEDIATE\n"+
		"drop2,x,advanced\n")

	assert.Equal(t, []string{"keep1", "keep2"}, prompts(Filter(records, LevelIntermediate)))
	assert.Equal(t, []string{"drop2"}, prompts(Filter(records, LevelAdvanced)))
}

func TestFilter_UnrecognizedTagsExcludedFromBoth(t *testing.T) {
	records := parse(t, "prompt,chinese,level\n"+
		"a,x,beginner\n"+
		"b,x,\n"+
		"c,x,advanced\n"+
		"d\n")

	assert.Equal(t, []string{"c"}, prompts(Filter(records, LevelBoth)))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := parse(t, "prompt,chinese,level\na,x,advanced\nb,x,intermediate")
	before := prompts(records)

	_ = Filter(records, LevelBoth)
	_ = Filter(records, LevelAdvanced)

	assert.Equal(t, before, prompts(records))
}

func TestFilter_UnknownLevelIsEmpty(t *testing.T) {
	records := parse(t, "prompt,chinese,level\na,x,advanced")
	got := Filter(records, Level("expert"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_EmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, LevelBoth))
	assert.Empty(t, Filter(nil, LevelAdvanced))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"both":           LevelBoth,
		" Advanced ":     LevelAdvanced,
		"INTERMEDIATE\t": LevelIntermediate,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("expert")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLevel))
}

func TestLevel_NextCycles(t *testing.T) {
	assert.Equal(t, LevelIntermediate, LevelBoth.Next())
	assert.Equal(t, LevelAdvanced, LevelIntermediate.Next())
	assert.Equal(t, LevelBoth, LevelAdvanced.Next())
	assert.Equal(t, LevelBoth, Level("bogus").Next())
}

func TestLevel_HasAudio(t *testing.T) {
	assert.False(t, LevelBoth.HasAudio())
	assert.True(t, LevelIntermediate.HasAudio())
	assert.True(t, LevelAdvanced.HasAudio())
}

func TestCount(t *testing.T) {
	records := parse(t, "prompt,chinese,level\n"+
		"a,x,advanced\nb,x,intermediate\nc,x, advanced\nd,x,other\n")
	c := Count(records)
	assert.Equal(t, 2, c[LevelAdvanced])
	assert.Equal(t, 1, c[LevelIntermediate])
	assert.Equal(t, 3, c[LevelBoth])
}

func TestMissingFields(t *testing.T) {
	assert.Empty(t, MissingFields([]string{"level", "prompt", "chinese", "pinyin"}))
	assert.Equal(t, []string{"chinese", "level"}, MissingFields([]string{"prompt"}))
}

func TestFromRecord(t *testing.T) {
	records := parse(t, "prompt,chinese,level\n\"Hello, friend\",你好朋友, Intermediate")
	require.Len(t, records, 1)
	s := FromRecord(records[0])
	assert.Equal(t, Sentence{Prompt: "Hello, friend", Chinese: "你好朋友", Level: LevelIntermediate}, s)
	assert.Len(t, FromRecords(records), 1)
}
