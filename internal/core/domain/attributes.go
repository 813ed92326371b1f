package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// AttributeSet is the normalized attribute representation: every attribute
// name maps to an ordered, non-empty list of string values. A bare scalar is
// never stored; normalization lifts it into a single-element list.
type AttributeSet map[string][]string

// Normalize converts loosely typed attribute data (as produced by a SAML
// library or a deserialized state blob) into an AttributeSet. Scalars become
// single-element lists, empty values and empty lists are dropped, and numeric
// attribute names are rejected.
//
// Normalize is idempotent: normalizing an already normalized set returns an
// equal set.
func Normalize(raw map[string]any) (AttributeSet, error) {
	out := make(AttributeSet, len(raw))
	for name, value := range raw {
		if name == "" || isNumeric(name) {
			return nil, AssertionError(name, "invalid attribute name %q: names must be non-numeric strings", name)
		}

		values, err := normalizeValue(name, value)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			out[name] = values
		}
	}
	return out, nil
}

func normalizeValue(name string, value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []string:
		return nonEmpty(v), nil
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, AssertionError(name, "attribute %q has a non-string value of type %T", name, item)
			}
			if s != "" {
				values = append(values, s)
			}
		}
		return values, nil
	default:
		return nil, AssertionError(name, "attribute %q has unsupported value type %T", name, value)
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// Copy returns a deep copy of the attribute set. Filters mutate attribute
// sets in place, so callers that need the pre-processing view must copy first.
func (a AttributeSet) Copy() AttributeSet {
	out := make(AttributeSet, len(a))
	for name, values := range a {
		out[name] = append([]string(nil), values...)
	}
	return out
}

// Names returns the attribute names in sorted order.
func (a AttributeSet) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// First returns the first value of the named attribute, or "" if absent.
func (a AttributeSet) First(name string) string {
	if values, ok := a[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// Append merges values into the named attribute. The merge is positional
// concatenation; duplicates are not removed.
func (a AttributeSet) Append(name string, values ...string) {
	a[name] = append(a[name], values...)
}

// Equal reports whether two attribute sets hold the same names with the same
// values in the same order.
func (a AttributeSet) Equal(b AttributeSet) bool {
	if len(a) != len(b) {
		return false
	}
	for name, values := range a {
		other, ok := b[name]
		if !ok || len(other) != len(values) {
			return false
		}
		for i := range values {
			if values[i] != other[i] {
				return false
			}
		}
	}
	return true
}

// ToRaw converts the set back into the loosely typed form used for state
// serialization. The result round-trips through Normalize unchanged.
func (a AttributeSet) ToRaw() map[string]any {
	out := make(map[string]any, len(a))
	for name, values := range a {
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		out[name] = list
	}
	return out
}

// String renders attribute names and value counts, never the values
// themselves. Safe for logs.
func (a AttributeSet) String() string {
	names := a.Names()
	s := "attributes{"
	for i, name := range names {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s(%d)", name, len(a[name]))
	}
	return s + "}"
}
