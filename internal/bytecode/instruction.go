package bytecode

// Instruction pairs an opcode with the source line it was compiled from.
// Line never affects control flow; it is advisory metadata surfaced in
// error reports.
//
// Rather than a tagged union per opcode (Go has none), the instruction
// carries every operand field an opcode variant might need; only the
// fields relevant to Kind are meaningful for a given instruction.
type Instruction struct {
	Line uint32
	Kind OpKind

	// Index carries: Push's const index, Load's slot, LoadDeref's free
	// index, LoadGlobal/StoreGlobal's global index.
	Index uint32

	// Target carries Jmp/PopJmpIfFalse's jump destination.
	Target uint32

	// SmallIndex carries FreeVarLocal's local slot and FreeVarFree's free
	// index (both encoded on disk as a single byte).
	SmallIndex uint8

	// Labels carries Call's given_josa_list, in call-site order.
	Labels []string

	Bin BinaryOp
	Un  UnaryOp
	Ord Ordering // meaningful only when Bin == BinCmp
}
