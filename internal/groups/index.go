// Package groups reads the group index that orders the practice pages.
package groups

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var (
	// ErrMissingID is returned for an index entry without an id.
	ErrMissingID = errors.New("group without id")
	// ErrDuplicateID is returned when two entries share an id.
	ErrDuplicateID = errors.New("duplicate group id")
)

// Group is one entry of groups.json. Fields other than id, title and description
// are kept in Extra.
type Group struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Extra       map[string]any `json:"-" yaml:"extra,omitempty"`
}

// UnmarshalJSON decodes the known fields and collects the rest into Extra. The
// known fields accept JSON numbers and booleans as well as strings.
func (g *Group) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	var p Group
	for key, dst := range map[string]*string{"id": &p.ID, "title": &p.Title, "description": &p.Description} {
		raw, ok := all[key]
		if !ok {
			continue
		}
		text, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		*dst = text
		delete(all, key)
	}

	if len(all) > 0 {
		p.Extra = make(map[string]any, len(all))
		for key, raw := range all {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			p.Extra[key] = v
		}
	}
	*g = p
	return nil
}

// scalarText formats a JSON scalar the way it reads in the source, so 3 and
// "3" name the same group. null is empty.
func scalarText(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("expected a string or number, got %s", raw)
}

// Path is the site-relative link to the group's page directory, with the id
// escaped as one path segment.
func (g Group) Path() string {
	return "groups/" + url.PathEscape(g.ID) + "/"
}

// Index is the ordered group list. It is read-only after ParseIndex.
type Index struct {
	groups []Group
	pos    map[string]int
}

// ParseIndex decodes a JSON array of groups.
func ParseIndex(data []byte) (*Index, error) {
	var list []Group
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse group index: %w", err)
	}
	return NewIndex(list)
}

// NewIndex validates list and builds an Index over a copy of it.
func NewIndex(list []Group) (*Index, error) {
	idx := &Index{
		groups: make([]Group, len(list)),
		pos:    make(map[string]int, len(list)),
	}
	copy(idx.groups, list)
	for i, g := range idx.groups {
		if g.ID == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingID)
		}
		if prev, ok := idx.pos[g.ID]; ok {
			return nil, fmt.Errorf("%w: %q at entries %d and %d", ErrDuplicateID, g.ID, prev, i)
		}
		idx.pos[g.ID] = i
	}
	return idx, nil
}

// Len returns the number of groups.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.groups)
}

// Groups returns the groups in index order.
func (x *Index) Groups() []Group {
	if x == nil {
		return nil
	}
	out := make([]Group, len(x.groups))
	copy(out, x.groups)
	return out
}

// Position returns the zero-based position of id.
func (x *Index) Position(id string) (int, bool) {
	if x == nil {
		return 0, false
	}
	i, ok := x.pos[id]
	return i, ok
}

// Get returns the group with the given id.
func (x *Index) Get(id string) (Group, bool) {
	i, ok := x.Position(id)
	if !ok {
		return Group{}, false
	}
	return x.groups[i], true
}

// Neighbors returns the groups before and after id. The sequence does not wrap:
// the first group has no prev and the last has no next. ok is false when id is
// not in the index.
func (x *Index) Neighbors(id string) (prev, next *Group, ok bool) {
	i, ok := x.Position(id)
	if !ok {
		return nil, nil, false
	}
	if i > 0 {
		g := x.groups[i-1]
		prev = &g
	}
	if i < len(x.groups)-1 {
		g := x.groups[i+1]
		next = &g
	}
	return prev, next, true
}
