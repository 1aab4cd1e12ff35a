package registry

import (
	"fmt"
	"strings"

	"github.com/srediag/atomicx/api"
	"github.com/srediag/atomicx/pkg/atomicx"
)

// Kind identifies a cell type.
type Kind int

const (
	KindInt Kind = iota + 1
	KindBool
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) valid() bool {
	return k >= KindInt && k <= KindFloat
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "int":
		return KindInt, nil
	case "bool":
		return KindBool, nil
	case "float":
		return KindFloat, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// KindOf reports the kind of an atomicx cell.
func KindOf(cell api.Word) (Kind, error) {
	switch cell.(type) {
	case *atomicx.IntCell:
		return KindInt, nil
	case *atomicx.BoolCell:
		return KindBool, nil
	case *atomicx.FloatCell:
		return KindFloat, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnknownKind, cell)
}

// NewCell returns a zero cell of kind k.
func NewCell(k Kind) (api.Word, error) {
	switch k {
	case KindInt:
		return atomicx.NewInt(0), nil
	case KindBool:
		return atomicx.NewBool(false), nil
	case KindFloat:
		return atomicx.NewFloat(0), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
}
