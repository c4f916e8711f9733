// Package value implements the tagged Value union: the primitive
// None/Integer/Real/Char/Boolean variants plus the first-class Function
// variant, with arithmetic, comparison, and coercion semantics expressed
// as plain methods and functions rather than operator overloading.
package value

import "github.com/rheehot/haneul/internal/bytecode"

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindInteger
	KindReal
	KindChar
	KindBoolean
	KindFunction
)

// Value is a small tagged union. Scalar kinds (None/Integer/Real/Char/
// Boolean) are plain data and copy by value on every Go assignment, which
// gives clone-on-read semantics for free. Function is the one variant with
// reference-shaped internals (its *Function pointer); see funcobject.go for
// how closures are freshly materialized on Push instead of aliased from the
// constant pool.
type Value struct {
	Kind Kind
	I    int64
	R    float64
	C    rune
	B    bool
	Fn   *Function
}

func None() Value                  { return Value{Kind: KindNone} }
func Integer(i int64) Value        { return Value{Kind: KindInteger, I: i} }
func Real(r float64) Value         { return Value{Kind: KindReal, R: r} }
func Char(c rune) Value            { return Value{Kind: KindChar, C: c} }
func Boolean(b bool) Value         { return Value{Kind: KindBoolean, B: b} }
func FunctionValue(fn *Function) Value { return Value{Kind: KindFunction, Fn: fn} }

// TypeName returns the Korean display name used in error messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNone:
		return "(없음)"
	case KindInteger:
		return "정수"
	case KindReal:
		return "실수"
	case KindChar:
		return "문자"
	case KindBoolean:
		return "부울"
	case KindFunction:
		return "함수"
	default:
		return "?"
	}
}

// Equal implements structural, per-variant equality: across variants
// values are never equal, and Function equality requires identical code,
// constants, and captured free variables (never-equal if either side is a
// native function).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNone:
		return true
	case KindInteger:
		return v.I == other.I
	case KindReal:
		return v.R == other.R
	case KindChar:
		return v.C == other.C
	case KindBoolean:
		return v.B == other.B
	case KindFunction:
		return v.Fn.equalFuncObject(other.Fn)
	default:
		return false
	}
}

func isNumeric(v Value) bool { return v.Kind == KindInteger || v.Kind == KindReal }

// Negate implements unary negation, defined on Integer and Real only.
func (v Value) Negate() (Value, bool) {
	switch v.Kind {
	case KindInteger:
		return Integer(-v.I), true
	case KindReal:
		return Real(-v.R), true
	default:
		return Value{}, false
	}
}

// Arith implements Add/Subtract/Multiply/Divide promotion rules: mixed
// Integer/Real promotes the integer side to Real and yields Real; both
// Integer yields Integer; both Real yields Real. Integer division truncates
// per Go's native int64 "/". Division/modulo by zero panics on Go's native
// int64 "/0" and "%0"; the engine recovers that panic at its dispatch
// boundary rather than turning it into a typed VM error.
func Arith(op bytecode.BinaryOp, lhs, rhs Value) (Value, bool) {
	if op == bytecode.BinMod {
		if lhs.Kind == KindInteger && rhs.Kind == KindInteger {
			return Integer(lhs.I % rhs.I), true
		}
		return Value{}, false
	}
	if !isNumeric(lhs) || !isNumeric(rhs) {
		return Value{}, false
	}
	if lhs.Kind == KindInteger && rhs.Kind == KindInteger {
		switch op {
		case bytecode.BinAdd:
			return Integer(lhs.I + rhs.I), true
		case bytecode.BinSubtract:
			return Integer(lhs.I - rhs.I), true
		case bytecode.BinMultiply:
			return Integer(lhs.I * rhs.I), true
		case bytecode.BinDivide:
			return Integer(lhs.I / rhs.I), true
		}
		return Value{}, false
	}
	l := asReal(lhs)
	r := asReal(rhs)
	switch op {
	case bytecode.BinAdd:
		return Real(l + r), true
	case bytecode.BinSubtract:
		return Real(l - r), true
	case bytecode.BinMultiply:
		return Real(l * r), true
	case bytecode.BinDivide:
		return Real(l / r), true
	}
	return Value{}, false
}

func asReal(v Value) float64 {
	if v.Kind == KindInteger {
		return float64(v.I)
	}
	return v.R
}

// Compare implements three-way comparison, defined on Integer×Integer,
// Real×Real, Integer×Real (promoting the integer), and Char×Char. typeOK
// reports whether the variant combination is comparable at all (false ⇒
// InvalidBinaryOp). comparable reports whether an ordering could be
// produced; it is false only for NaN, which is not a type error but always
// yields Boolean(false) regardless of the instruction's embedded ordinal.
func Compare(lhs, rhs Value) (ord bytecode.Ordering, comparable bool, typeOK bool) {
	switch {
	case lhs.Kind == KindChar && rhs.Kind == KindChar:
		return orderOf(int64(lhs.C) - int64(rhs.C)), true, true
	case lhs.Kind == KindInteger && rhs.Kind == KindInteger:
		return orderOf(lhs.I - rhs.I), true, true
	case lhs.Kind == KindReal && rhs.Kind == KindReal:
		o, cmp := orderOfFloat(lhs.R, rhs.R)
		return o, cmp, true
	case lhs.Kind == KindInteger && rhs.Kind == KindReal:
		o, cmp := orderOfFloat(float64(lhs.I), rhs.R)
		return o, cmp, true
	case lhs.Kind == KindReal && rhs.Kind == KindInteger:
		o, cmp := orderOfFloat(lhs.R, float64(rhs.I))
		return o, cmp, true
	default:
		return 0, false, false
	}
}

func orderOf(diff int64) bytecode.Ordering {
	switch {
	case diff < 0:
		return bytecode.OrderLess
	case diff > 0:
		return bytecode.OrderGreater
	default:
		return bytecode.OrderEqual
	}
}

func orderOfFloat(l, r float64) (bytecode.Ordering, bool) {
	if l != l || r != r { // NaN on either side: defined type, no ordering
		return 0, false
	}
	switch {
	case l < r:
		return bytecode.OrderLess, true
	case l > r:
		return bytecode.OrderGreater, true
	default:
		return bytecode.OrderEqual, true
	}
}
