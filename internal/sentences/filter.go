package sentences

import (
	"sentencecards/internal/table"
)

// Field names of the sentence file.
const (
	FieldPrompt  = "prompt"
	FieldChinese = "chinese"
	FieldLevel   = "level"
)

// RequiredFields must appear in a sentence file header.
var RequiredFields = []string{FieldPrompt, FieldChinese, FieldLevel}

// Filter returns the records shown for level. A specific level keeps matching
// records in file order. LevelBoth returns intermediate records followed by
// advanced records; rows tagged with anything else are left out. The input slice
// is never modified.
func Filter(records []table.Record, level Level) []table.Record {
	switch level {
	case LevelIntermediate, LevelAdvanced:
		return byLevel(records, level)
	case LevelBoth:
		out := byLevel(records, LevelIntermediate)
		return append(out, byLevel(records, LevelAdvanced)...)
	}
	return []table.Record{}
}

func byLevel(records []table.Record, level Level) []table.Record {
	out := make([]table.Record, 0, len(records))
	for _, r := range records {
		if RecordLevel(r) == level {
			out = append(out, r)
		}
	}
	return out
}

// RecordLevel returns the normalized level tag of r. The result may be outside
// Levels.
func RecordLevel(r table.Record) Level {
	return Level(Normalize(r.Get(FieldLevel)))
}

// Counts tallies records per recognized tag. LevelBoth holds the number of records
// shown for "both".
type Counts map[Level]int

// Count tallies records by normalized level.
func Count(records []table.Record) Counts {
	c := Counts{LevelBoth: 0, LevelIntermediate: 0, LevelAdvanced: 0}
	for _, r := range records {
		switch l := RecordLevel(r); l {
		case LevelIntermediate, LevelAdvanced:
			c[l]++
			c[LevelBoth]++
		}
	}
	return c
}

// MissingFields returns the required field names absent from header.
func MissingFields(header []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, f := range RequiredFields {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
