package value

import (
	"math"
	"testing"

	"github.com/rheehot/haneul/internal/bytecode"
)

func TestTypeName(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"none", None(), "(없음)"},
		{"integer", Integer(1), "정수"},
		{"real", Real(1.5), "실수"},
		{"char", Char('a'), "문자"},
		{"boolean", Boolean(true), "부울"},
		{"function", FunctionValue(&Function{JosaMap: NewJosaMap(nil), Obj: &FuncObject{Kind: FuncObjNative}}), "함수"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.TypeName(); got != tt.want {
				t.Errorf("TypeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEqualAcrossVariantsNeverEqual(t *testing.T) {
	if Integer(1).Equal(Real(1)) {
		t.Error("Integer(1) should never equal Real(1)")
	}
	if None().Equal(Boolean(false)) {
		t.Error("None should never equal Boolean(false)")
	}
}

func TestArithCoercionCommutative(t *testing.T) {
	a := Integer(3)
	b := Real(4.5)
	r1, ok1 := Arith(bytecode.BinAdd, a, b)
	r2, ok2 := Arith(bytecode.BinAdd, b, a)
	if !ok1 || !ok2 {
		t.Fatal("mixed Integer/Real Add should be defined")
	}
	if r1.Kind != KindReal || r2.Kind != KindReal {
		t.Fatalf("mixed Add should yield Real, got %v and %v", r1.Kind, r2.Kind)
	}
	if r1.R != r2.R {
		t.Errorf("Add should be commutative: %v != %v", r1.R, r2.R)
	}
}

func TestArithBothIntegerYieldsInteger(t *testing.T) {
	r, ok := Arith(bytecode.BinMultiply, Integer(2), Integer(3))
	if !ok || r.Kind != KindInteger || r.I != 6 {
		t.Fatalf("Integer*Integer should yield Integer(6), got %+v ok=%v", r, ok)
	}
}

func TestModOnlyIntegerInteger(t *testing.T) {
	if _, ok := Arith(bytecode.BinMod, Real(3), Integer(2)); ok {
		t.Error("Mod should be undefined for Real x Integer")
	}
	r, ok := Arith(bytecode.BinMod, Integer(7), Integer(2))
	if !ok || r.I != 1 {
		t.Fatalf("7 %% 2 should be 1, got %+v ok=%v", r, ok)
	}
}

func TestNegate(t *testing.T) {
	if v, ok := Integer(5).Negate(); !ok || v.I != -5 {
		t.Errorf("Negate(5) = %+v, %v", v, ok)
	}
	if _, ok := Boolean(true).Negate(); ok {
		t.Error("Negate should be undefined for Boolean")
	}
}

func TestCompareNaNIsFalseNotError(t *testing.T) {
	_, comparable, typeOK := Compare(Real(math.NaN()), Real(1.0))
	if !typeOK {
		t.Fatal("Real x Real must be a type-valid combination even with NaN")
	}
	if comparable {
		t.Error("NaN comparisons should report not-comparable")
	}
}

func TestCompareUndefinedCombination(t *testing.T) {
	_, _, typeOK := Compare(Boolean(true), Integer(1))
	if typeOK {
		t.Error("Boolean x Integer should not be a valid comparison")
	}
}

func TestCompareIntegerRealPromotion(t *testing.T) {
	ord, comparable, typeOK := Compare(Integer(1), Real(2.0))
	if !typeOK || !comparable || ord != bytecode.OrderLess {
		t.Fatalf("Integer(1) vs Real(2.0) should compare Less, got %v %v %v", ord, comparable, typeOK)
	}
}
