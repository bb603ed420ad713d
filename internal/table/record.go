// Package table parses small comma-delimited text files into field-named records.
//
// The format is deliberately simple: a header line of field names followed by one
// line per record. A value containing a comma must be wrapped in double quotes.
// Escaped quotes ("") and line breaks inside a value are not supported.
package table

// Record is one parsed data line: an ordered mapping from header name to value.
// Every record of a parsed document shares the same header, so all records carry
// the same field names in the same order. Records are immutable.
type Record struct {
	fields []string // shared with the other records of the same document
	values []string
}

// NewRecord builds a record from parallel field and value slices. Values beyond the
// field count are dropped and missing values become "".
func NewRecord(fields, values []string) Record {
	v := make([]string, len(fields))
	copy(v, values)
	return Record{fields: fields, values: v}
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Fields returns the field names in header order.
func (r Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Values returns the values in header order.
func (r Record) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Lookup returns the value stored under name. When the header repeats a name the
// later column wins.
func (r Record) Lookup(name string) (string, bool) {
	for i := len(r.fields) - 1; i >= 0; i-- {
		if r.fields[i] == name {
			return r.values[i], true
		}
	}
	return "", false
}

// Get returns the value stored under name, or "" when the field does not exist.
func (r Record) Get(name string) string {
	v, _ := r.Lookup(name)
	return v
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for i, f := range r.fields {
		m[f] = r.values[i]
	}
	return m
}

// Equal reports whether two records have the same fields and values.
func (r Record) Equal(o Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i] != o.fields[i] || r.values[i] != o.values[i] {
			return false
		}
	}
	return true
}
