package confloader

import (
	"errors"

	kmaps "github.com/knadh/koanf/maps"
)

// mapProvider feeds a map of overrides to koanf. Dotted keys are expanded
// so "session.dir" and {"session": {"dir": ...}} are equivalent.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) {
	return kmaps.Unflatten(m, "."), nil
}
