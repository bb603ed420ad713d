package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(fields []string, values ...string) Record {
	return NewRecord(fields, values)
}

var sentenceHeader = []string{"prompt", "chinese", "level"}

func TestParse_EndToEnd(t *testing.T) {
	text := "prompt,chinese,level\n" +
		"\"Hello, friend\",你好朋友,intermediate\n" +
		"Goodbye,再见,advanced\n"

	got := Parse(text)
	want := []Record{
		rec(sentenceHeader, "Hello, friend", "你好朋友", "intermediate"),
		rec(sentenceHeader, "Goodbye", "再见", "advanced"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, map[string]string{
		"prompt":  "Hello, friend",
		"chinese": "你好朋友",
		"level":   "intermediate",
	}, got[0].Map())
}

func TestParse_OneRecordPerDataLineInOrder(t *testing.T) {
	text := "a,b\n1,2\n3,4\n5,6"
	got := Parse(text)
	require.Len(t, got, 3)
	for i, first := range []string{"1", "3", "5"} {
		assert.Equal(t, first, got[i].Get("a"), "record %d", i)
	}
}

func TestParse_QuotedComma(t *testing.T) {
	got := Parse("greeting,n\n\"hello, world\",1")
	require.Len(t, got, 1)
	assert.Equal(t, "hello, world", got[0].Get("greeting"))
	assert.Equal(t, "1", got[0].Get("n"))
}

func TestParse_ShortLinePadsMissingFields(t *testing.T) {
	got := Parse("prompt,chinese,level\nHi")
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"Hi", "", ""}, r.Values())
	v, ok := r.Lookup("level")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParse_ExtraTokensDropped(t *testing.T) {
	got := Parse("a,b\n1,2,3,4")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"1", "2"}, got[0].Values())
}

func TestParse_BlankLinesSkipped(t *testing.T) {
	text := "a,b\n\n1,2\n   \n\t\n3,4\n\n"
	got := Parse(text)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Get("a"))
	assert.Equal(t, "3", got[1].Get("a"))
}

func TestParse_HeaderNamesTrimmed(t *testing.T) {
	got := Parse(" prompt , chinese ,level \r\nx,y,z\r\n")
	require.Len(t, got, 1)
	assert.Equal(t, sentenceHeader, got[0].Fields())
	assert.Equal(t, "z", got[0].Get("level"))
}

func TestParse_ByteOrderMark(t *testing.T) {
	got := Parse("\uFEFFprompt,level\nhi,advanced")
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Get("prompt"))
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n  "))
	assert.Empty(t, Parse("prompt,chinese,level"))
}

func TestParse_Idempotent(t *testing.T) {
	text := "prompt,chinese,level\n\"a, b\",c,advanced\n\nd,,intermediate\ne"
	first := Parse(text)
	second := Parse(text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parsing twice differs (-first +second):\n%s", diff)
	}
}

func TestParse_DuplicateHeaderLaterColumnWins(t *testing.T) {
	got := Parse("a,a\n1,2")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Get("a"))
	assert.Equal(t, []string{"a", "a"}, got[0].Fields())
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"a,b",c`, []string{`"a,b"`, "c"}},
		{"quoted last", `x,"y, z"`, []string{"x", `"y, z"`}},
		{"space before comma after quote", `"a" ,b`, []string{`"a"`, " ", "b"}},
		{"empty field collapses", "a,,b", []string{"a", "b"}},
		{"only commas", ",,,", nil},
		{"unterminated quote", `"a,b`, []string{`"a`, "b"}},
		{"quote inside value", `"a"b,c`, []string{`"a"b`, "c"}},
		{"inner spaces kept", "a b , c", []string{"a b ", " c"}},
		{"quoted empty", `"",x`, []string{`""`, "x"}},
		{"multibyte", `你好,"再见, 朋友"`, []string{"你好", `"再见, 朋友"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.line)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", Unquote(`"abc"`))
	assert.Equal(t, "abc", Unquote(`"abc`))
	assert.Equal(t, "abc", Unquote(`abc"`))
	assert.Equal(t, "", Unquote(`"`))
	assert.Equal(t, "", Unquote(`""`))
	assert.Equal(t, `say ""hi""`, Unquote(`"say ""hi"""`))
}

func TestHeader(t *testing.T) {
	assert.Equal(t, sentenceHeader, Header("prompt, chinese ,level\nx,y,z"))
	assert.Equal(t, []string{""}, Header(""))
}

func TestRecord_AccessorsReturnCopies(t *testing.T) {
	r := rec([]string{"a"}, "1")
	r.Values()[0] = "changed"
	r.Fields()[0] = "changed"
	assert.Equal(t, "1", r.Get("a"))
	assert.Equal(t, "", r.Get("missing"))
}
