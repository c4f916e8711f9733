// Command haneul is the CLI driver: it reads a filename, invokes the
// loader, hands the result to the engine, and formats the final error or
// success line.
package main

import (
	"fmt"
	"os"

	"github.com/rheehot/haneul/internal/builtin"
	"github.com/rheehot/haneul/internal/bytecode"
	"github.com/rheehot/haneul/internal/engine"
	"github.com/rheehot/haneul/internal/herr"
	"github.com/rheehot/haneul/internal/loader"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var verbose, disasm bool
	var path string

	for _, a := range args {
		switch a {
		case "-v", "--verbose":
			verbose = true
		case "-d", "--disasm":
			disasm = true
		default:
			path = a
		}
	}

	if path == "" {
		fmt.Println("파일 이름을 입력해주세요.")
		return 1
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("파일을 찾을 수 없습니다.")
		return 1
	}

	prog, err := loader.Load(data)
	if err != nil {
		fmt.Printf("프로그램을 불러오는 중 에러 발생 : %s\n", err.Error())
		return 1
	}

	if verbose {
		logStats(prog)
	}
	if disasm {
		disassemble(prog.Code, 0)
	}

	initial := builtin.InitialGlobals(prog.GlobalVarNames)
	m := engine.New(prog, initial)
	if verbose {
		m.Trace = func(line uint32, kind bytecode.OpKind) {
			fmt.Fprintf(os.Stderr, "[trace] line %d: %s\n", line, kind)
		}
	}

	topFrame := &engine.StackFrame{Code: prog.Code, Consts: prog.ConstTable, SlotStart: 0}
	if err := m.Run(topFrame); err != nil {
		if he, ok := err.(*herr.Error); ok {
			fmt.Printf("%d번째 라인 에서 에러 발생 : %s\n", he.Line, he.Error())
		} else {
			fmt.Printf("에러 발생 : %s\n", err.Error())
		}
		return 1
	}

	fmt.Println("정상 종료")
	return 0
}

func logStats(prog *loader.Program) {
	s := prog.Stats()
	fmt.Fprintf(os.Stderr, "[load] 전역 변수 %d개, 상수 %d개, 명령어 %d개, 중첩 함수 %d개\n",
		s.Globals, s.Constants, s.Instructions, s.NestedObjects)
}

func disassemble(code []bytecode.Instruction, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for i, inst := range code {
		fmt.Fprintf(os.Stderr, "%s%4d  라인 %-4d  %s\n", indent, i, inst.Line, inst.Kind)
	}
}
