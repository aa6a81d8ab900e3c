package param

import "fmt"

// Kind selects which variant of Descriptor is in use.
type Kind int

const (
	Float Kind = iota
	Bool
	Enum
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts the on-disk type name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "float":
		return Float, nil
	case "bool":
		return Bool, nil
	case "enum":
		return Enum, nil
	default:
		return 0, fmt.Errorf("unsupported parameter type '%s': expected float, bool or enum", s)
	}
}
