package integration

import (
	"slices"
	"strings"
)

// FieldSet is an ordered set of attribute field names
type FieldSet []string

// Contains reports whether the set names field
func (s FieldSet) Contains(field string) bool {
	return slices.Contains(s, field)
}

// With returns a copy of the set including field
func (s FieldSet) With(field string) FieldSet {
	if s.Contains(field) {
		return slices.Clone(s)
	}
	return append(slices.Clone(s), field)
}

// Without returns a copy of the set excluding field
func (s FieldSet) Without(field string) FieldSet {
	out := make(FieldSet, 0, len(s))
	for _, f := range s {
		if f != field {
			out = append(out, f)
		}
	}
	return out
}

// Union returns the fields of both sets, keeping first-seen order
func (s FieldSet) Union(other FieldSet) FieldSet {
	out := slices.Clone(s)
	for _, f := range other {
		if !out.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Normalize trims names and drops empty and duplicate entries
func (s FieldSet) Normalize() FieldSet {
	out := make(FieldSet, 0, len(s))
	for _, f := range s {
		f = strings.TrimSpace(f)
		if f != "" && !out.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}
