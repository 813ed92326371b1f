package processing

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a scalar or a sequence in YAML, normalizing to a
// list. Attribute values in administrator configuration are commonly written
// as bare scalars.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = StringList(items)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %v node", node.Kind)
	}
}
