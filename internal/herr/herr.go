// Package herr is the typed runtime error taxonomy: a closed set of
// failure kinds, each with its own Korean message template.
package herr

import (
	"fmt"

	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/value"
)

// Kind is the closed set of user-visible runtime failure kinds.
type Kind int

const (
	UnboundVariable Kind = iota
	TooManyArgs
	NotCallable
	ExpectedBoolean
	InvalidUnaryOp
	InvalidBinaryOp
	UnboundJosa
	AlreadyAppliedJosa
)

// Error is a runtime failure carrying the failing instruction's source
// line, propagated unchanged through every enclosing frame.
type Error struct {
	Line uint32
	Kind Kind

	Name string // UnboundVariable

	ActualArity int // TooManyArgs
	GivenArity  int

	Value value.Value // NotCallable, ExpectedBoolean

	Lhs, Rhs value.Value // InvalidBinaryOp
	BinOp    bytecode.BinaryOp
	UnOp     bytecode.UnaryOp // InvalidUnaryOp

	Josa string // UnboundJosa, AlreadyAppliedJosa
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnboundVariable:
		return fmt.Sprintf("변수 '%s'을(를) 찾을 수 없습니다.", e.Name)
	case TooManyArgs:
		return fmt.Sprintf("인수 %d개를 받는 함수인데 %d개가 주어졌습니다.", e.ActualArity, e.GivenArity)
	case NotCallable:
		return fmt.Sprintf("%s 타입은 호출 가능한 타입이 아닙니다.", e.Value.TypeName())
	case ExpectedBoolean:
		return fmt.Sprintf("여기에는 부울 타입이 와야하는데 %s 타입이 주어졌습니다.", e.Value.TypeName())
	case InvalidUnaryOp:
		return fmt.Sprintf("%s 타입에는 %s 연산을 적용할 수 없습니다.", e.Value.TypeName(), e.UnOp.DisplayName())
	case InvalidBinaryOp:
		return fmt.Sprintf("%s 타입과 %s 타입에는 %s 연산을 적용할 수 없습니다.", e.Lhs.TypeName(), e.Rhs.TypeName(), e.BinOp.DisplayName())
	case UnboundJosa:
		return fmt.Sprintf("'%s' 라는 이름의 인수를 찾을 수 없습니다.", e.Josa)
	case AlreadyAppliedJosa:
		return fmt.Sprintf("'%s' 인수에는 이미 값이 주어졌습니다.", e.Josa)
	default:
		return "알 수 없는 에러입니다."
	}
}

// LoadError is a structural failure raised by the loader. It carries no
// line number: a malformed program fails before any instruction runs.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return e.Message }

func Loadf(format string, args ...interface{}) *LoadError {
	return &LoadError{Message: fmt.Sprintf(format, args...)}
}
