package engine

import (
	"golang.org/x/exp/slices"

	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/value"
)

const wildcardLabel = "_"

// call implements the Call opcode in full: popping the callee, binding
// givenJosaList against its josa map (cloned, never mutating the popped
// value in place), and either re-pushing a partially-applied Function or
// dispatching to a NativeFunc/CodeObject.
func (m *Machine) call(givenJosaList []string) error {
	callee := m.pop()
	if callee.Kind != value.KindFunction {
		return &herr.Error{Kind: herr.NotCallable, Value: callee}
	}

	josaMap := callee.Fn.JosaMap.Clone()
	residual := josaMap.Residual()
	given := len(givenJosaList)
	if given > residual {
		return &herr.Error{Kind: herr.TooManyArgs, ActualArity: residual, GivenArity: given}
	}

	// Labels consume stack values top-down, in the list's order — the last
	// label in the call binds the deepest pushed argument.
	for _, label := range givenJosaList {
		argVal := m.pop()
		if label == wildcardLabel {
			josaMap.FillWildcard(argVal)
			continue
		}
		ok, already := josaMap.FillLabel(label, argVal)
		if !ok {
			return &herr.Error{Kind: herr.UnboundJosa, Josa: label}
		}
		if already {
			return &herr.Error{Kind: herr.AlreadyAppliedJosa, Josa: label}
		}
	}

	partial := &value.Function{JosaMap: josaMap, Obj: callee.Fn.Obj}
	if !josaMap.Fulfilled() {
		m.push(value.FunctionValue(partial))
		return nil
	}

	args := josaMap.Values()
	if partial.Obj.Kind == value.FuncObjNative {
		result, err := partial.Obj.Native(args)
		if err != nil {
			return err
		}
		m.push(result)
		return nil
	}
	return m.callCodeObject(partial.Obj, args)
}

// callCodeObject extends the shared operand stack with the materialized
// arguments, recurses into Run over a child frame based at the arguments'
// start, then restores the stack to slotStart plus one result by popping
// the result, discarding the argument locals, and pushing the saved
// result back.
func (m *Machine) callCodeObject(obj *value.FuncObject, args []value.Value) error {
	slotStart := len(m.Stack)
	m.Stack = append(m.Stack, args...)

	child := &StackFrame{
		Code:      obj.Code,
		Consts:    obj.Consts,
		FreeVars:  obj.FreeVars,
		SlotStart: slotStart,
	}
	if err := m.Run(child); err != nil {
		return err
	}

	result := m.pop()
	m.Stack = slices.Delete(m.Stack, slotStart, slotStart+len(args))
	m.push(result)
	return nil
}
