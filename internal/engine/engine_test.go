package engine

import (
	"testing"

	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/value"
)

func newMachine(globalNames []string, initial []*value.Value) *Machine {
	padded := make([]*value.Value, len(globalNames))
	copy(padded, initial)
	return &Machine{
		Stack:       make([]value.Value, 0, 64),
		Globals:     padded,
		GlobalNames: globalNames,
	}
}

// Pushing a constant and immediately popping it empties the stack.
func TestPushPopIdentity(t *testing.T) {
	m := newMachine(nil, nil)
	frame := &StackFrame{
		Consts: []value.Value{value.Integer(42)},
		Code: []bytecode.Instruction{
			{Line: 1, Kind: bytecode.OpPush, Index: 0},
			{Line: 1, Kind: bytecode.OpPop},
		},
	}
	if err := m.Run(frame); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(m.Stack) != 0 {
		t.Fatalf("expected empty stack, got %d items", len(m.Stack))
	}
}

// Integer + Integer yields Integer.
func TestIntegerArithmetic(t *testing.T) {
	m := newMachine(nil, nil)
	frame := &StackFrame{
		Consts: []value.Value{value.Integer(3), value.Integer(4)},
		Code: []bytecode.Instruction{
			{Line: 1, Kind: bytecode.OpPush, Index: 0},
			{Line: 1, Kind: bytecode.OpPush, Index: 1},
			{Line: 1, Kind: bytecode.OpBinaryOp, Bin: bytecode.BinAdd},
		},
	}
	if err := m.Run(frame); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top := m.Stack[len(m.Stack)-1]
	if top.Kind != value.KindInteger || top.I != 7 {
		t.Fatalf("expected Integer(7), got %+v", top)
	}
}

// Mixed Integer/Real arithmetic promotes to Real.
func TestMixedCoercionMultiply(t *testing.T) {
	m := newMachine(nil, nil)
	frame := &StackFrame{
		Consts: []value.Value{value.Integer(2), value.Real(3.5)},
		Code: []bytecode.Instruction{
			{Line: 1, Kind: bytecode.OpPush, Index: 0},
			{Line: 1, Kind: bytecode.OpPush, Index: 1},
			{Line: 1, Kind: bytecode.OpBinaryOp, Bin: bytecode.BinMultiply},
		},
	}
	if err := m.Run(frame); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top := m.Stack[len(m.Stack)-1]
	if top.Kind != value.KindReal || top.R != 7.0 {
		t.Fatalf("expected Real(7.0), got %+v", top)
	}
}

// An error carries the failing instruction's line number.
func TestUnboundVariableCarriesLine(t *testing.T) {
	m := newMachine([]string{"x"}, nil)
	frame := &StackFrame{
		Code: []bytecode.Instruction{
			{Line: 1, Kind: bytecode.OpPush, Index: 0},
			{Line: 17, Kind: bytecode.OpLoadGlobal, Index: 0},
		},
		Consts: []value.Value{value.None()},
	}
	err := m.Run(frame)
	he, ok := err.(*herr.Error)
	if !ok {
		t.Fatalf("expected *herr.Error, got %T (%v)", err, err)
	}
	if he.Kind != herr.UnboundVariable || he.Line != 17 || he.Name != "x" {
		t.Fatalf("unexpected error: %+v", he)
	}
}

// Partial application yields the same result as a single call with all
// arguments at once.
func TestPartialApplicationMatchesSingleCall(t *testing.T) {
	makeAddFn := func() value.Value {
		obj := &value.FuncObject{
			Kind: value.FuncObjCode,
			Code: []bytecode.Instruction{
				{Line: 1, Kind: bytecode.OpLoad, Index: 0},
				{Line: 1, Kind: bytecode.OpLoad, Index: 1},
				{Line: 1, Kind: bytecode.OpBinaryOp, Bin: bytecode.BinAdd},
			},
		}
		return value.FunctionValue(&value.Function{JosaMap: value.NewJosaMap([]string{"을", "로"}), Obj: obj})
	}

	// Single call: push 3 (을), push 4 (로), push fn, Call(["로","을"]): the
	// callee is popped first, then labels consume the stack top-down in
	// list order.
	m1 := newMachine(nil, nil)
	f1 := &StackFrame{
		Consts: []value.Value{makeAddFn(), value.Integer(3), value.Integer(4)},
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpPush, Index: 1},
			{Kind: bytecode.OpPush, Index: 2},
			{Kind: bytecode.OpPush, Index: 0},
			{Kind: bytecode.OpCall, Labels: []string{"로", "을"}},
		},
	}
	if err := m1.Run(f1); err != nil {
		t.Fatalf("single-call Run: %v", err)
	}
	singleResult := m1.Stack[len(m1.Stack)-1]

	// Partial application: apply "을" first, then "로". 4 is pushed first so
	// it sits beneath the partially-applied function the first Call pushes
	// back.
	m2 := newMachine(nil, nil)
	f2 := &StackFrame{
		Consts: []value.Value{makeAddFn(), value.Integer(3), value.Integer(4)},
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpPush, Index: 2},
			{Kind: bytecode.OpPush, Index: 1},
			{Kind: bytecode.OpPush, Index: 0},
			{Kind: bytecode.OpCall, Labels: []string{"을"}}, // partially applied, pushed back
			{Kind: bytecode.OpCall, Labels: []string{"로"}},
		},
	}
	if err := m2.Run(f2); err != nil {
		t.Fatalf("partial-application Run: %v", err)
	}
	partialResult := m2.Stack[len(m2.Stack)-1]

	if !singleResult.Equal(partialResult) {
		t.Fatalf("single call %+v != partial application %+v", singleResult, partialResult)
	}
	if partialResult.Kind != value.KindInteger || partialResult.I != 7 {
		t.Fatalf("expected Integer(7), got %+v", partialResult)
	}
}

// A closure captures a local via FreeVarLocal and is later invoked
// through a global.
func TestClosureCaptureAndInvoke(t *testing.T) {
	inner := &value.FuncObject{
		Kind: value.FuncObjCode,
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpLoadDeref, Index: 0},
		},
	}
	innerConst := value.FunctionValue(&value.Function{JosaMap: value.NewJosaMap(nil), Obj: inner})

	m := newMachine([]string{"captured"}, nil)
	top := &StackFrame{
		// local slot 0 holds Integer(5); we simulate this by extending the
		// stack directly, as Call would for a real invocation.
		Consts: []value.Value{innerConst},
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpPush, Index: 0},       // push closure template
			{Kind: bytecode.OpFreeVarLocal, SmallIndex: 0}, // capture local slot 0
			{Kind: bytecode.OpStoreGlobal, Index: 0},
		},
	}
	m.Stack = append(m.Stack, value.Integer(5)) // local slot 0
	top.SlotStart = 0

	if err := m.Run(top); err != nil {
		t.Fatalf("Run: %v", err)
	}

	closureSlot := m.Globals[0]
	if closureSlot == nil || closureSlot.Kind != value.KindFunction {
		t.Fatalf("expected closure stored in global 0, got %+v", closureSlot)
	}

	callFrame := &StackFrame{
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpLoadGlobal, Index: 0},
			{Kind: bytecode.OpCall, Labels: nil},
		},
	}
	if err := m.Run(callFrame); err != nil {
		t.Fatalf("call Run: %v", err)
	}
	result := m.Stack[len(m.Stack)-1]
	if result.Kind != value.KindInteger || result.I != 5 {
		t.Fatalf("expected LoadDeref to yield Integer(5), got %+v", result)
	}
}

// NotCallable and TooManyArgs error scenarios.
func TestNotCallable(t *testing.T) {
	m := newMachine(nil, nil)
	frame := &StackFrame{
		Consts: []value.Value{value.Integer(1)},
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpPush, Index: 0},
			{Kind: bytecode.OpCall, Labels: nil},
		},
	}
	err := m.Run(frame)
	he, ok := err.(*herr.Error)
	if !ok || he.Kind != herr.NotCallable {
		t.Fatalf("expected NotCallable, got %v", err)
	}
}

func TestTooManyArgs(t *testing.T) {
	obj := &value.FuncObject{Kind: value.FuncObjCode}
	fn := value.FunctionValue(&value.Function{JosaMap: value.NewJosaMap([]string{"을"}), Obj: obj})
	m := newMachine(nil, nil)
	frame := &StackFrame{
		Consts: []value.Value{fn, value.Integer(1), value.Integer(2)},
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpPush, Index: 1},
			{Kind: bytecode.OpPush, Index: 2},
			{Kind: bytecode.OpPush, Index: 0},
			{Kind: bytecode.OpCall, Labels: []string{"을", "_"}},
		},
	}
	err := m.Run(frame)
	he, ok := err.(*herr.Error)
	if !ok || he.Kind != herr.TooManyArgs || he.ActualArity != 1 || he.GivenArity != 2 {
		t.Fatalf("expected TooManyArgs{1,2}, got %v", err)
	}
}

// PopJmpIfFalse + Jmp implements if/else with no stack residue.
func TestIfElseNoResidue(t *testing.T) {
	m := newMachine(nil, nil)
	frame := &StackFrame{
		Consts: []value.Value{value.Boolean(false), value.Integer(1), value.Integer(2)},
		Code: []bytecode.Instruction{
			{Kind: bytecode.OpPush, Index: 0},          // cond
			{Kind: bytecode.OpPopJmpIfFalse, Target: 4}, // -> else
			{Kind: bytecode.OpPush, Index: 1},          // then-branch
			{Kind: bytecode.OpJmp, Target: 5},
			{Kind: bytecode.OpPush, Index: 2}, // else-branch
		},
	}
	if err := m.Run(frame); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(m.Stack) != 1 {
		t.Fatalf("expected exactly one residual value, got %d", len(m.Stack))
	}
	if m.Stack[0].I != 2 {
		t.Fatalf("expected else-branch value Integer(2), got %+v", m.Stack[0])
	}
}
