package catalog

import "fmt"

// Flavor selects which host editor's primitive node set is targeted.
// The set is closed: every supported editor has its own catalog table
// and nothing is dispatched dynamically.
type Flavor uint8

const (
	FlavorGeometry Flavor = iota
	FlavorShader
	FlavorCompositor
)

// String returns the flavor name.
func (f Flavor) String() string {
	switch f {
	case FlavorGeometry:
		return "geometry"
	case FlavorShader:
		return "shader"
	case FlavorCompositor:
		return "compositor"
	default:
		return fmt.Sprintf("flavor(%d)", f)
	}
}

// Valid reports whether f names a supported editor.
func (f Flavor) Valid() bool {
	return f <= FlavorCompositor
}

// ParseFlavor parses a flavor name as used by configuration and the
// command line.
func ParseFlavor(s string) (Flavor, error) {
	switch s {
	case "geometry":
		return FlavorGeometry, nil
	case "shader":
		return FlavorShader, nil
	case "compositor":
		return FlavorCompositor, nil
	default:
		return 0, fmt.Errorf("unknown flavor %q (want geometry, shader or compositor)", s)
	}
}

// Flavors returns all supported flavors in declaration order.
func Flavors() []Flavor {
	return []Flavor{FlavorGeometry, FlavorShader, FlavorCompositor}
}
