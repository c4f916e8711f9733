// Package engine is the stack-based execution engine: an operand stack,
// recursive call-frame invocation, opcode dispatch, closure construction,
// and partial application by argument label.
package engine

import (
	"fmt"

	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/loader"
	"github.com/rheehot/haneul/internal/value"
)

// Tracer receives one call per dispatched opcode when verbose/trace mode
// is enabled.
type Tracer func(line uint32, kind bytecode.OpKind)

// Machine owns the operand stack and the global-variable vector; both are
// exclusive to one Machine instance. A nil Globals entry is an empty slot,
// kept distinct from Value's own None variant (which is a legitimate,
// bound value).
type Machine struct {
	Stack       []value.Value
	Globals     []*value.Value
	GlobalNames []string
	Trace       Tracer
}

// New constructs a Machine over a decoded Program. initial holds the
// builtin-provided global values, indexed exactly as prog.GlobalVarNames;
// a nil entry, or a short slice, leaves the remaining slots empty until
// StoreGlobal fills them. The result is padded to the program's declared
// global count.
func New(prog *loader.Program, initial []*value.Value) *Machine {
	padded := make([]*value.Value, len(prog.GlobalVarNames))
	copy(padded, initial)
	return &Machine{
		Stack:       make([]value.Value, 0, 256),
		Globals:     padded,
		GlobalNames: prog.GlobalVarNames,
	}
}

// StackFrame is a single call's execution context.
type StackFrame struct {
	Code      []bytecode.Instruction
	Consts    []value.Value
	FreeVars  []value.Value
	SlotStart int
}

func (m *Machine) push(v value.Value) { m.Stack = append(m.Stack, v) }

func (m *Machine) pop() value.Value {
	last := len(m.Stack) - 1
	v := m.Stack[last]
	m.Stack = m.Stack[:last]
	return v
}

// Run drives frame's instruction pointer from 0 until it reaches the end of
// frame.Code, dispatching one opcode per iteration. Integer divide/modulo
// by zero panics on Go's native int64 "/"/"%"; step recovers that panic at
// the per-instruction dispatch boundary and returns it as a plain error,
// to which Run attaches the failing instruction's line number, rather than
// smoothing it into a typed herr.Error.
func (m *Machine) Run(frame *StackFrame) error {
	ip := 0
	for ip < len(frame.Code) {
		inst := frame.Code[ip]
		if m.Trace != nil {
			m.Trace(inst.Line, inst.Kind)
		}
		next, err := m.step(frame, ip, inst)
		if err != nil {
			return attachLine(err, inst.Line)
		}
		ip = next
	}
	return nil
}

// attachLine sets a typed error's line only if it has none yet: an error
// that already carries a nonzero line was raised in a nested frame and
// keeps that line as it propagates through the enclosing frames.
func attachLine(err error, line uint32) error {
	if he, ok := err.(*herr.Error); ok {
		if he.Line == 0 {
			he.Line = line
		}
		return he
	}
	return fmt.Errorf("라인 %d: %w", line, err)
}

// step executes one instruction and returns the next instruction pointer.
// A recovered panic (e.g. Go's native divide-by-zero trap) is re-raised as
// a plain error so Run can still attach the failing line number to it.
func (m *Machine) step(frame *StackFrame, ip int, inst bytecode.Instruction) (next int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	switch inst.Kind {
	case bytecode.OpPush:
		m.push(pushConstant(frame.Consts[inst.Index]))
	case bytecode.OpPop:
		m.pop()
	case bytecode.OpLoad:
		m.push(m.Stack[frame.SlotStart+int(inst.Index)])
	case bytecode.OpLoadDeref:
		m.push(frame.FreeVars[inst.Index])
	case bytecode.OpLoadGlobal:
		slot := m.Globals[inst.Index]
		if slot == nil {
			return ip, &herr.Error{Kind: herr.UnboundVariable, Name: m.GlobalNames[inst.Index]}
		}
		m.push(*slot)
	case bytecode.OpStoreGlobal:
		v := m.pop()
		m.Globals[inst.Index] = &v
	case bytecode.OpJmp:
		return int(inst.Target), nil
	case bytecode.OpPopJmpIfFalse:
		v := m.pop()
		if v.Kind != value.KindBoolean {
			return ip, &herr.Error{Kind: herr.ExpectedBoolean, Value: v}
		}
		if !v.B {
			return int(inst.Target), nil
		}
	case bytecode.OpUnaryOp:
		v := m.pop()
		result, ok := v.Negate()
		if !ok {
			return ip, &herr.Error{Kind: herr.InvalidUnaryOp, Value: v, UnOp: inst.Un}
		}
		m.push(result)
	case bytecode.OpBinaryOp:
		rhs := m.pop()
		lhs := m.pop()
		result, err := applyBinary(inst.Bin, inst.Ord, lhs, rhs)
		if err != nil {
			return ip, err
		}
		m.push(result)
	case bytecode.OpFreeVarLocal:
		m.captureFreeVar(frame, m.Stack[frame.SlotStart+int(inst.SmallIndex)])
	case bytecode.OpFreeVarFree:
		m.captureFreeVar(frame, frame.FreeVars[inst.SmallIndex])
	case bytecode.OpCall:
		if err := m.call(inst.Labels); err != nil {
			return ip, err
		}
	default:
		return ip, fmt.Errorf("알 수 없는 명령어입니다: %v", inst.Kind)
	}
	return ip + 1, nil
}

// pushConstant implements Push's "clone of const_table[c]" with the one
// necessary exception: Function constants are re-materialized into a fresh
// closure instance (see value.FuncObject.NewClosureInstance) so that
// FreeVarLocal/FreeVarFree capture into a copy private to this Push, never
// into the shared constant-pool template.
func pushConstant(c value.Value) value.Value {
	if c.Kind != value.KindFunction {
		return c
	}
	return value.FunctionValue(&value.Function{
		JosaMap: c.Fn.JosaMap.Clone(),
		Obj:     c.Fn.Obj.NewClosureInstance(),
	})
}

// captureFreeVar appends v to the free_vars of the closure sitting on top
// of the operand stack. Violating the top-is-code-object precondition is a
// fatal implementation bug, not a user error, so this panics (recovered
// and reported like any other internal bug by step's deferred recover,
// rather than a typed herr.Error).
func (m *Machine) captureFreeVar(_ *StackFrame, v value.Value) {
	top := m.Stack[len(m.Stack)-1]
	if top.Kind != value.KindFunction || top.Fn.Obj.Kind != value.FuncObjCode {
		panic("FreeVarLocal/FreeVarFree: top of stack is not a code-object closure")
	}
	top.Fn.Obj.FreeVars = append(top.Fn.Obj.FreeVars, v)
}
