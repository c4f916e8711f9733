package loader

import (
	"github.com/dolthub/swiss"

	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/value"
)

// Opcode tags on disk.
const (
	tagPush uint8 = iota
	tagPop
	tagLoad
	tagLoadDeref
	tagLoadGlobal
	tagStoreGlobal
	tagCall
	tagJmp
	tagPopJmpIfFalse
	tagFreeVarLocal
	tagFreeVarFree
	tagUnaryOp
	tagBinaryOp
)

const (
	unaryNegate uint8 = iota
)

const (
	binaryAdd uint8 = iota
	binaryCmpEqual
	binaryCmpLess
	binaryCmpGreater
	binarySubtract
	binaryMultiply
	binaryDivide
	binaryMod
)

// constant tags on disk.
const (
	constNone uint8 = iota
	constInteger
	constReal
	constChar
	constBoolean
	constFunction
)

// Load decodes a full program from a byte slice. It is strict: trailing
// bytes and structural mismatches are errors.
func Load(data []byte) (*Program, error) {
	d := &decoder{data: data}
	names, err := d.stringList()
	if err != nil {
		return nil, err
	}
	consts, err := d.constantList()
	if err != nil {
		return nil, err
	}
	code, err := d.instructionList()
	if err != nil {
		return nil, err
	}
	if d.remaining() != 0 {
		return nil, herr.Loadf("프로그램 끝에 %d바이트의 불필요한 데이터가 있습니다.", d.remaining())
	}
	return &Program{
		GlobalVarNames: names,
		ConstTable:     consts,
		Code:           code,
		GlobalIndex:    BuildGlobalIndex(names),
	}, nil
}

// BuildGlobalIndex builds the name→slot auxiliary index described in
// Program.GlobalIndex's doc comment.
func BuildGlobalIndex(names []string) *swiss.Map[string, int] {
	m := swiss.NewMap[string, int](uint32(len(names)))
	for i, n := range names {
		m.Put(n, i)
	}
	return m
}

func (d *decoder) constantList() ([]value.Value, error) {
	count, err := d.u64()
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, count)
	for i := range out {
		v, err := d.constant()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) constant() (value.Value, error) {
	tag, err := d.u8()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case constNone:
		return value.None(), nil
	case constInteger:
		i, err := d.i64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(i), nil
	case constReal:
		r, err := d.f64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Real(r), nil
	case constChar:
		c, err := d.char()
		if err != nil {
			return value.Value{}, err
		}
		return value.Char(c), nil
	case constBoolean:
		b, err := d.boolean()
		if err != nil {
			return value.Value{}, err
		}
		return value.Boolean(b), nil
	case constFunction:
		arity, err := d.u8()
		if err != nil {
			return value.Value{}, err
		}
		obj, err := d.codeObject()
		if err != nil {
			return value.Value{}, err
		}
		// The on-disk Function payload carries only an arity byte, not a
		// label list, so the loader synthesizes opaque positional labels
		// "0".."N-1" rather than guessing at names the format does not
		// encode.
		fn := &value.Function{JosaMap: value.NewJosaMap(syntheticLabels(int(arity))), Obj: obj}
		return value.FunctionValue(fn), nil
	default:
		return value.Value{}, herr.Loadf("알 수 없는 상수 태그입니다: %d.", tag)
	}
}

func syntheticLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = itoa(i)
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func (d *decoder) codeObject() (*value.FuncObject, error) {
	consts, err := d.constantList()
	if err != nil {
		return nil, err
	}
	code, err := d.instructionList()
	if err != nil {
		return nil, err
	}
	return &value.FuncObject{
		Kind:     value.FuncObjCode,
		Code:     code,
		Consts:   consts,
		FreeVars: nil,
	}, nil
}

func (d *decoder) instructionList() ([]bytecode.Instruction, error) {
	count, err := d.u64()
	if err != nil {
		return nil, err
	}
	out := make([]bytecode.Instruction, count)
	for i := range out {
		inst, err := d.instruction()
		if err != nil {
			return nil, err
		}
		out[i] = inst
	}
	return out, nil
}

func (d *decoder) instruction() (bytecode.Instruction, error) {
	line, err := d.u32()
	if err != nil {
		return bytecode.Instruction{}, err
	}
	tag, err := d.u8()
	if err != nil {
		return bytecode.Instruction{}, err
	}
	inst := bytecode.Instruction{Line: line}
	switch tag {
	case tagPush:
		inst.Kind = bytecode.OpPush
		if inst.Index, err = d.u32(); err != nil {
			return inst, err
		}
	case tagPop:
		inst.Kind = bytecode.OpPop
	case tagLoad:
		inst.Kind = bytecode.OpLoad
		if inst.Index, err = d.u32(); err != nil {
			return inst, err
		}
	case tagLoadDeref:
		inst.Kind = bytecode.OpLoadDeref
		if inst.Index, err = d.u32(); err != nil {
			return inst, err
		}
	case tagLoadGlobal:
		inst.Kind = bytecode.OpLoadGlobal
		if inst.Index, err = d.u32(); err != nil {
			return inst, err
		}
	case tagStoreGlobal:
		inst.Kind = bytecode.OpStoreGlobal
		if inst.Index, err = d.u32(); err != nil {
			return inst, err
		}
	case tagCall:
		inst.Kind = bytecode.OpCall
		if inst.Labels, err = d.stringList(); err != nil {
			return inst, err
		}
	case tagJmp:
		inst.Kind = bytecode.OpJmp
		if inst.Target, err = d.u32(); err != nil {
			return inst, err
		}
	case tagPopJmpIfFalse:
		inst.Kind = bytecode.OpPopJmpIfFalse
		if inst.Target, err = d.u32(); err != nil {
			return inst, err
		}
	case tagFreeVarLocal:
		inst.Kind = bytecode.OpFreeVarLocal
		if inst.SmallIndex, err = d.u8(); err != nil {
			return inst, err
		}
	case tagFreeVarFree:
		inst.Kind = bytecode.OpFreeVarFree
		if inst.SmallIndex, err = d.u8(); err != nil {
			return inst, err
		}
	case tagUnaryOp:
		inst.Kind = bytecode.OpUnaryOp
		sub, err := d.u8()
		if err != nil {
			return inst, err
		}
		switch sub {
		case unaryNegate:
			inst.Un = bytecode.UnNegate
		default:
			return inst, herr.Loadf("알 수 없는 단항 연산 태그입니다: %d.", sub)
		}
	case tagBinaryOp:
		inst.Kind = bytecode.OpBinaryOp
		sub, err := d.u8()
		if err != nil {
			return inst, err
		}
		switch sub {
		case binaryAdd:
			inst.Bin = bytecode.BinAdd
		case binarySubtract:
			inst.Bin = bytecode.BinSubtract
		case binaryMultiply:
			inst.Bin = bytecode.BinMultiply
		case binaryDivide:
			inst.Bin = bytecode.BinDivide
		case binaryMod:
			inst.Bin = bytecode.BinMod
		case binaryCmpEqual:
			inst.Bin, inst.Ord = bytecode.BinCmp, bytecode.OrderEqual
		case binaryCmpLess:
			inst.Bin, inst.Ord = bytecode.BinCmp, bytecode.OrderLess
		case binaryCmpGreater:
			inst.Bin, inst.Ord = bytecode.BinCmp, bytecode.OrderGreater
		default:
			return inst, herr.Loadf("알 수 없는 이항 연산 태그입니다: %d.", sub)
		}
	default:
		return inst, herr.Loadf("알 수 없는 명령어 태그입니다: %d (라인 %d).", tag, line)
	}
	return inst, nil
}
