// Package builtin furnishes the one native value the core engine itself
// never constructs: the print function bound to "보여주다". The core only
// consumes it through the initial global slot vector InitialGlobals
// builds.
package builtin

import (
	"fmt"

	"github.com/rheehot/haneul/internal/value"
)

// PrintName is the builtin's declared global name.
const PrintName = "보여주다"

// PrintJosaLabel is the single argument label the josa-enabled calling
// convention uses for the print builtin.
const PrintJosaLabel = "을"

// Print constructs the native print FuncObject: it writes its one argument
// and returns None.
func Print() *value.Function {
	obj := &value.FuncObject{
		Kind: value.FuncObjNative,
		Native: func(args []value.Value) (value.Value, error) {
			fmt.Println(formatValue(args[0]))
			return value.None(), nil
		},
	}
	return &value.Function{JosaMap: value.NewJosaMap([]string{PrintJosaLabel}), Obj: obj}
}

func formatValue(v value.Value) string {
	switch v.Kind {
	case value.KindNone:
		return "(없음)"
	case value.KindInteger:
		return fmt.Sprintf("%d", v.I)
	case value.KindReal:
		return fmt.Sprintf("%g", v.R)
	case value.KindChar:
		return fmt.Sprintf("%c", v.C)
	case value.KindBoolean:
		return fmt.Sprintf("%t", v.B)
	case value.KindFunction:
		return "<함수>"
	default:
		return "?"
	}
}

// InitialGlobals builds the padded global slot vector: the print builtin
// is injected unconditionally into global slot 0, leaving every other
// slot empty until the program's own StoreGlobal opcodes fill them.
func InitialGlobals(names []string) []*value.Value {
	slots := make([]*value.Value, len(names))
	if len(slots) > 0 {
		v := value.FunctionValue(Print())
		slots[0] = &v
	}
	return slots
}
