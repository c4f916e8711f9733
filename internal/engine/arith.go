package engine

import (
	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/value"
)

// applyBinary implements the binary opcode semantics: Add/Subtract/
// Multiply/Divide/Mod defer to value.Arith; Cmp compares the operands and
// reduces the three-way Ordering against the instruction's embedded ord
// into a Boolean, honoring the NaN special case (a defined comparison
// that is always false rather than a type error).
func applyBinary(op bytecode.BinaryOp, embeddedOrd bytecode.Ordering, lhs, rhs value.Value) (value.Value, error) {
	if op == bytecode.BinCmp {
		ord, comparable, typeOK := value.Compare(lhs, rhs)
		if !typeOK {
			return value.Value{}, &herr.Error{Kind: herr.InvalidBinaryOp, Lhs: lhs, Rhs: rhs, BinOp: op}
		}
		if !comparable {
			return value.Boolean(false), nil
		}
		return value.Boolean(ord == embeddedOrd), nil
	}
	result, ok := value.Arith(op, lhs, rhs)
	if !ok {
		return value.Value{}, &herr.Error{Kind: herr.InvalidBinaryOp, Lhs: lhs, Rhs: rhs, BinOp: op}
	}
	return result, nil
}
