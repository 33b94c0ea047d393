// Package maps provides the Map2Struct helper used to decode a component's
// generic configuration map into a concrete Go struct, the same role it
// plays throughout the teacher's node Init methods.
package maps

import "github.com/mitchellh/mapstructure"

// Map2Struct decodes m into target, which must be a pointer to a struct.
func Map2Struct(m map[string]any, target any) error {
	return mapstructure.Decode(m, target)
}
