package sentences

import "sentencecards/internal/table"

// Sentence is the display view of one record.
type Sentence struct {
	Prompt  string
	Chinese string
	Level   Level
}

// FromRecord reads the display fields of r. Level is normalized.
func FromRecord(r table.Record) Sentence {
	return Sentence{
		Prompt:  r.Get(FieldPrompt),
		Chinese: r.Get(FieldChinese),
		Level:   RecordLevel(r),
	}
}

// FromRecords maps FromRecord over records.
func FromRecords(records []table.Record) []Sentence {
	out := make([]Sentence, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}
