package regalloc

import (
	"testing"

	"ivc/src/frontend"
	"ivc/src/ir/lir"
	"ivc/src/util"
)

func compileSource(t *testing.T, src string) ([]lir.Instruction, *lir.Counters) {
	t.Helper()
	errs := util.NewErrorList()
	lx := frontend.NewLexer(src, errs)
	toks := lx.Tokens()
	prog := frontend.Parse(toks, errs)
	if errs.HasErrors() {
		t.Fatalf("parse errors: %v", errs.Records())
	}
	frontend.NewAnalyzer(errs).Analyze(prog)
	if errs.HasErrors() {
		t.Fatalf("semantic errors: %v", errs.Records())
	}
	stream, _, counters := lir.Emit(prog, 1, errs)
	if errs.HasErrors() {
		t.Fatalf("emission errors: %v", errs.Records())
	}
	return stream, counters
}

func TestAllocateSmallProgramNeedsNoSpill(t *testing.T) {
	stream, counters := compileSource(t, "PROGRAM IS x, y, z IN x := 1; y := 2; z := x + y; END")
	res, err := Allocate(stream, counters)
	if err != nil {
		t.Fatalf("unexpected allocation failure: %v", err)
	}
	if res.Colors[lir.AccReg] != 0 {
		t.Errorf("accumulator vreg must stay colour 0, got %d", res.Colors[lir.AccReg])
	}
	for v, c := range res.Colors {
		if c < 0 || c >= NumPhysicalRegs {
			t.Errorf("vreg %d got out-of-range colour %d", v, c)
		}
	}
}

func TestAllocateRespectsInterference(t *testing.T) {
	// vreg 1 and vreg 2 are both live from RST v2 until GET v1 reads vreg 1, so they must never
	// share a colour.
	stream := []lir.Instruction{
		{Op: lir.OpRst, Reg: 1},
		{Op: lir.OpInc, Reg: 1},
		{Op: lir.OpRst, Reg: 2},
		{Op: lir.OpInc, Reg: 2},
		{Op: lir.OpGet, Reg: 1},
		{Op: lir.OpAdd, Reg: 2},
		{Op: lir.OpPut, Reg: 3},
		{Op: lir.OpHalt},
	}
	counters := lir.NewCounters()
	// Fast-forward the counters past every vreg already used by the synthetic stream above.
	for i1 := 0; i1 < 3; i1++ {
		counters.Vreg()
	}

	res, err := Allocate(stream, counters)
	if err != nil {
		t.Fatalf("unexpected allocation failure: %v", err)
	}
	if res.Colors[1] == res.Colors[2] {
		t.Errorf("vreg 1 and vreg 2 are simultaneously live and must not share a colour: both got %d", res.Colors[1])
	}
}

func TestAllocateForcesSpillUnderPressure(t *testing.T) {
	// More simultaneously live vregs than physical registers forces at least one spill round,
	// which must rewrite the stream with LOAD/STORE pairs while still producing a valid colouring.
	var stream []lir.Instruction
	const n = NumPhysicalRegs + 4
	for v := 1; v <= n; v++ {
		stream = append(stream,
			lir.Instruction{Op: lir.OpRst, Reg: v},
			lir.Instruction{Op: lir.OpInc, Reg: v},
		)
	}
	var sum = 1
	stream = append(stream, lir.Instruction{Op: lir.OpGet, Reg: sum})
	for v := 2; v <= n; v++ {
		stream = append(stream, lir.Instruction{Op: lir.OpAdd, Reg: v})
	}
	stream = append(stream, lir.Instruction{Op: lir.OpHalt})

	counters := lir.NewCounters()
	for i1 := 0; i1 < n; i1++ {
		counters.Vreg()
	}

	res, err := Allocate(stream, counters)
	if err != nil {
		t.Fatalf("unexpected allocation failure: %v", err)
	}
	sawLoad := false
	for _, instr := range res.Stream {
		if instr.Op == lir.OpLoad {
			sawLoad = true
		}
	}
	if !sawLoad {
		t.Errorf("expected spill rewriting to introduce at least one LOAD")
	}
}
