//go:build unit

package processing

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestStringList_AcceptsScalarAndSequence verifies both YAML shapes decode
// to a list.
func TestStringList_AcceptsScalarAndSequence(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want StringList
	}{
		{"scalar", "value", StringList{"value"}},
		{"sequence", "[a, b]", StringList{"a", "b"}},
		{"empty sequence", "[]", StringList{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got StringList
			if err := yaml.Unmarshal([]byte(tc.yaml), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

// TestStringList_RejectsMapping verifies a mapping node is an error.
func TestStringList_RejectsMapping(t *testing.T) {
	var got StringList
	if err := yaml.Unmarshal([]byte("a: b"), &got); err == nil {
		t.Error("expected an error for a mapping node")
	}
}
