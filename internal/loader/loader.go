// Package loader implements a big-endian binary decoder: it materializes
// a Program (global names, constant pool, instruction stream), including
// nested code objects for function constants. It never executes bytecode.
package loader

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/dolthub/swiss"

	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/value"
)

// Program is the top-level decoded artifact.
type Program struct {
	GlobalVarNames []string
	ConstTable     []value.Value
	Code           []bytecode.Instruction

	// GlobalIndex maps a global's declared name to its slot, built once at
	// load time so any caller that needs to resolve a declared name to a
	// slot can do so without a linear scan. It is not consulted by the
	// engine itself, which addresses globals purely by index.
	GlobalIndex *swiss.Map[string, int]
}

// Stats summarizes a decoded program for verbose-mode diagnostics. It
// never influences decoding.
type Stats struct {
	Globals       int
	Constants     int
	Instructions  int
	NestedObjects int
}

func (p *Program) Stats() Stats {
	s := Stats{
		Globals:      len(p.GlobalVarNames),
		Constants:    len(p.ConstTable),
		Instructions: len(p.Code),
	}
	s.NestedObjects = countNested(p.ConstTable)
	return s
}

func countNested(consts []value.Value) int {
	n := 0
	for _, c := range consts {
		if c.Kind == value.KindFunction && c.Fn.Obj.Kind == value.FuncObjCode {
			n++
			n += countNested(c.Fn.Obj.Consts)
		}
	}
	return n
}

// decoder walks a byte slice left to right, failing strictly on truncation,
// malformed encodings, or (at the top level, via Load) trailing bytes.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) remaining() int { return len(d.data) - d.pos }

func (d *decoder) need(n int) error {
	if d.remaining() < n {
		return herr.Loadf("프로그램 데이터가 예기치 않게 끝났습니다 (필요: %d바이트, 남음: %d바이트).", n, d.remaining())
	}
	return nil
}

func (d *decoder) u8() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) u32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) u64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decoder) i64() (int64, error) {
	v, err := d.u64()
	return int64(v), err
}

func (d *decoder) f64() (float64, error) {
	v, err := d.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (d *decoder) boolean() (bool, error) {
	b, err := d.u8()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

// char decodes a u32 codepoint and rejects anything that is not a valid
// Unicode scalar value.
func (d *decoder) char() (rune, error) {
	v, err := d.u32()
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if v > utf8.MaxRune || !utf8.ValidRune(r) {
		return 0, herr.Loadf("잘못된 유니코드 코드포인트입니다: %d.", v)
	}
	return r, nil
}

// charByteLen returns how many bytes a UTF-8 scalar occupies given its
// lead byte.
func charByteLen(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead < 0xE0:
		return 2
	case lead < 0xF0:
		return 3
	default:
		return 4
	}
}

// str decodes a string: a u64 scalar count, followed by that many UTF-8
// scalars whose byte lengths are derived from each lead byte. The
// concatenation must be valid UTF-8.
func (d *decoder) str() (string, error) {
	count, err := d.u64()
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		if err := d.need(1); err != nil {
			return "", err
		}
		n := charByteLen(d.data[d.pos])
		if err := d.need(n); err != nil {
			return "", err
		}
		buf = append(buf, d.data[d.pos:d.pos+n]...)
		d.pos += n
	}
	if !utf8.Valid(buf) {
		return "", herr.Loadf("문자열이 올바른 UTF-8이 아닙니다.")
	}
	return string(buf), nil
}

func (d *decoder) stringList() ([]string, error) {
	count, err := d.u64()
	if err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := range out {
		s, err := d.str()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
