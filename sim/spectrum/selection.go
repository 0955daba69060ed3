package spectrum

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModeSelection chooses which resonances contribute to a spectrum, by
// ModeRecord.Index. The zero value selects every mode.
type ModeSelection struct {
	indices map[int]struct{} // nil = all modes
}

// AllModes selects every mode.
func AllModes() ModeSelection { return ModeSelection{} }

// SelectModes selects exactly the given mode indices. With no arguments
// nothing is selected and spectra are all zero.
func SelectModes(indices ...int) ModeSelection {
	s := ModeSelection{indices: make(map[int]struct{}, len(indices))}
	for _, i := range indices {
		s.indices[i] = struct{}{}
	}
	return s
}

// IsAll reports whether every mode is selected.
func (s ModeSelection) IsAll() bool { return s.indices == nil }

// Contains reports whether mode index i is selected.
func (s ModeSelection) Contains(i int) bool {
	if s.indices == nil {
		return true
	}
	_, ok := s.indices[i]
	return ok
}

// Indices returns the selected indices in ascending order, or nil for AllModes.
func (s ModeSelection) Indices() []int {
	if s.indices == nil {
		return nil
	}
	out := make([]int, 0, len(s.indices))
	for i := range s.indices {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s ModeSelection) String() string {
	if s.IsAll() {
		return "all"
	}
	return fmt.Sprint(s.Indices())
}

// UnmarshalYAML accepts the scalar "all" or a sequence of mode indices.
func (s *ModeSelection) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value != "all" {
			return fmt.Errorf("line %d: mode selection must be \"all\" or a list of indices, got %q", value.Line, value.Value)
		}
		*s = AllModes()
		return nil
	case yaml.SequenceNode:
		var indices []int
		if err := value.Decode(&indices); err != nil {
			return fmt.Errorf("line %d: mode selection: %w", value.Line, err)
		}
		*s = SelectModes(indices...)
		return nil
	default:
		return fmt.Errorf("line %d: mode selection must be \"all\" or a list of indices", value.Line)
	}
}

// MarshalYAML mirrors UnmarshalYAML.
func (s ModeSelection) MarshalYAML() (interface{}, error) {
	if s.IsAll() {
		return "all", nil
	}
	return s.Indices(), nil
}
