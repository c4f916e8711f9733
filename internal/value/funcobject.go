package value

import "github.com/rheehot/haneul/internal/bytecode"

// FuncObjKind distinguishes a bytecode body from a host-provided primitive.
type FuncObjKind uint8

const (
	FuncObjCode FuncObjKind = iota
	FuncObjNative
)

// FuncObject is either a CodeObject (bytecode body, its own constant pool,
// and captured free variables) or a NativeFunc (host callback).
type FuncObject struct {
	Kind FuncObjKind

	// CodeObject fields. Code and Consts are immutable and safely shared
	// across every closure instance created from the same Function
	// constant; FreeVars is NOT shared — see NewClosureInstance below.
	Code     []bytecode.Instruction
	Consts   []Value
	FreeVars []Value

	// NativeFunc field.
	Native func([]Value) (Value, error)
}

// NewClosureInstance materializes a fresh closure from a Function constant
// template. For a CodeObject this shares Code/Consts (read-only) but starts
// with an empty FreeVars slice private to this instance — required because
// FreeVarLocal/FreeVarFree append to the closure sitting on top of the
// stack: if Push merely aliased the constant pool's *FuncObject, every
// closure created from the same constant (e.g. inside a loop) would append
// into the same shared slice and corrupt each other's captures. NativeFunc
// objects have no free variables and no CodeObject identity concerns, so
// they may be shared directly.
func (fo *FuncObject) NewClosureInstance() *FuncObject {
	if fo.Kind == FuncObjNative {
		return fo
	}
	return &FuncObject{
		Kind:     FuncObjCode,
		Code:     fo.Code,
		Consts:   fo.Consts,
		FreeVars: make([]Value, 0, 4),
	}
}

// josaSlot is one entry of a JosaMap: a label and its (possibly unfilled)
// bound value.
type josaSlot struct {
	label  string
	filled bool
	value  Value
}

// JosaMap is the insertion-ordered label → optional-value mapping that
// backs a Function's named-argument calling convention. Its iteration
// order is the declaration order used both to materialize the final
// argument vector and to resolve the wildcard label "_".
type JosaMap struct {
	slots []josaSlot
}

// NewJosaMap builds a fresh, fully-unfilled map over the given labels, in
// order.
func NewJosaMap(labels []string) *JosaMap {
	m := &JosaMap{slots: make([]josaSlot, len(labels))}
	for i, l := range labels {
		m.slots[i] = josaSlot{label: l}
	}
	return m
}

// Arity is the map's declared full arity (number of keys).
func (m *JosaMap) Arity() int { return len(m.slots) }

// Residual is the number of still-unfilled slots.
func (m *JosaMap) Residual() int {
	n := 0
	for _, s := range m.slots {
		if !s.filled {
			n++
		}
	}
	return n
}

// Clone deep-copies the map so that filling a slot on the clone never
// mutates the original.
func (m *JosaMap) Clone() *JosaMap {
	cp := &JosaMap{slots: make([]josaSlot, len(m.slots))}
	copy(cp.slots, m.slots)
	return cp
}

// FillLabel binds the named label to v. ok is false if the label is not a
// key of the map; alreadyFilled is true if the slot was already bound.
func (m *JosaMap) FillLabel(label string, v Value) (ok, alreadyFilled bool) {
	for i := range m.slots {
		if m.slots[i].label == label {
			if m.slots[i].filled {
				return true, true
			}
			m.slots[i].filled = true
			m.slots[i].value = v
			return true, false
		}
	}
	return false, false
}

// FillWildcard binds v to the first currently-unfilled slot in insertion
// order. ok is false only if every slot is already filled (the engine
// never reaches that case because the residual-arity check in Call
// precedes it).
func (m *JosaMap) FillWildcard(v Value) (ok bool) {
	for i := range m.slots {
		if !m.slots[i].filled {
			m.slots[i].filled = true
			m.slots[i].value = v
			return true
		}
	}
	return false
}

// Fulfilled reports whether every slot has been bound.
func (m *JosaMap) Fulfilled() bool { return m.Residual() == 0 }

// Values returns the bound values in insertion order. It must only be
// called once Fulfilled() is true.
func (m *JosaMap) Values() []Value {
	out := make([]Value, len(m.slots))
	for i, s := range m.slots {
		out[i] = s.value
	}
	return out
}

// Function is the runtime representation of a Function value: a josa_map
// paired with the underlying callable.
type Function struct {
	JosaMap *JosaMap
	Obj     *FuncObject
}

// equalFuncObject implements Value.Equal's Function case: equal only when
// both sides are code objects with identical code, constants, and captured
// free variables; any native function comparison is never-equal. Partial
// application state (the josa_map's fill progress) is not part of
// equality, so two closures sharing a code object compare equal regardless
// of how much of each has been applied.
func (f *Function) equalFuncObject(other *Function) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Obj.Kind != FuncObjCode || other.Obj.Kind != FuncObjCode {
		return false
	}
	return instructionsEqual(f.Obj.Code, other.Obj.Code) &&
		valuesEqual(f.Obj.Consts, other.Obj.Consts) &&
		valuesEqual(f.Obj.FreeVars, other.Obj.FreeVars)
}

func instructionsEqual(a, b []bytecode.Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ai, bi := a[i], b[i]
		if ai.Kind != bi.Kind || ai.Line != bi.Line || ai.Index != bi.Index ||
			ai.Target != bi.Target || ai.SmallIndex != bi.SmallIndex ||
			ai.Bin != bi.Bin || ai.Un != bi.Un || ai.Ord != bi.Ord {
			return false
		}
		if len(ai.Labels) != len(bi.Labels) {
			return false
		}
		for j := range ai.Labels {
			if ai.Labels[j] != bi.Labels[j] {
				return false
			}
		}
	}
	return true
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
