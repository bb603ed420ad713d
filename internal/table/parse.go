package table

import (
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// Parse converts delimited text into records, one per non-blank data line, in line
// order. The first line is the header. Parse never fails: a short line yields ""
// for its missing trailing fields and surplus values are dropped.
func Parse(text string) []Record {
	lines := strings.Split(trim(text), "\n")
	header := splitHeader(lines[0])

	var records []Record
	for _, line := range lines[1:] {
		line = trim(line)
		if line == "" {
			continue
		}
		records = append(records, NewRecord(header, unquoteAll(Tokenize(line))))
	}
	return records
}

// Header returns the trimmed field names of the text's header line.
func Header(text string) []string {
	first, _, _ := strings.Cut(trim(text), "\n")
	return splitHeader(first)
}

func splitHeader(line string) []string {
	names := strings.Split(line, ",")
	for i, n := range names {
		names[i] = trim(n)
	}
	return names
}

// tokenPattern matches one token: the shortest double-quoted span or a run of
// non-comma characters, either one followed by optional whitespace and a comma or
// the end of the line.
var tokenPattern = regexp2.MustCompile(`(".*?"|[^,]+)(?=\s*,|\s*$)`, regexp2.ECMAScript)

// Tokenize splits one data line into raw tokens, quotes included. A bare comma
// starts no token, so an empty unquoted field produces nothing and later values
// shift left.
func Tokenize(line string) []string {
	var tokens []string
	m, err := tokenPattern.FindStringMatch(line)
	for err == nil && m != nil {
		tokens = append(tokens, m.String())
		m, err = tokenPattern.FindNextMatch(m)
	}
	return tokens
}

// Unquote strips at most one leading and one trailing double quote. Doubled quotes
// inside the value are left as they are.
func Unquote(token string) string {
	token = strings.TrimPrefix(token, `"`)
	return strings.TrimSuffix(token, `"`)
}

func unquoteAll(tokens []string) []string {
	for i, t := range tokens {
		tokens[i] = Unquote(t)
	}
	return tokens
}

// trim removes surrounding whitespace, including a byte order mark left by
// spreadsheet exports.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
