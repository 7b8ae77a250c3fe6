// Package compiler wires the front end, LIR emitter, CFG/liveness, register allocator and
// assembler emitter into the single pipeline the CLI drives (spec.md section 2, "SYSTEM
// OVERVIEW"; mirrors vslc's own src/main.go run() stage sequence).
package compiler

import (
	"ivc/src/backend/asm"
	"ivc/src/backend/regalloc"
	"ivc/src/frontend"
	"ivc/src/ir/lir"
	"ivc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Result is the successful output of Compile: the assembled Lines ready for asm.Render, plus
// their static cost estimate (the VM's per-op costs summed once over every Line).
type Result struct {
	Lines    []asm.Line
	Estimate int
}

// ---------------------
// ----- Functions -----
// ---------------------

// Compile runs every stage of spec.md section 4 over src, stopping at the first stage that
// collects a non-warning error (spec.md section 7). threads is forwarded to lir.Emit for
// command-line compatibility with the "-t" flag, but every stage runs strictly single-threaded
// (spec.md section 5), so the same AST always assembles to the same Lines.
func Compile(src string, threads int) (Result, *util.ErrorList) {
	errs := util.NewErrorList()

	lx := frontend.NewLexer(src, errs)
	toks := lx.Tokens()
	if errs.HasErrors() {
		return Result{}, errs
	}

	prog := frontend.Parse(toks, errs)
	if errs.HasErrors() {
		return Result{}, errs
	}

	frontend.NewAnalyzer(errs).Analyze(prog)
	if errs.HasErrors() {
		return Result{}, errs
	}

	stream, _, counters := lir.Emit(prog, threads, errs)
	if errs.HasErrors() {
		return Result{}, errs
	}

	res, err := regalloc.Allocate(stream, counters)
	if err != nil {
		errs.Add(util.StageAllocate, 0, 0, "%s", err)
		return Result{}, errs
	}

	lines, err := asm.Emit(res.Stream, res.Colors)
	if err != nil {
		errs.Add(util.StageEmit, 0, 0, "%s", err)
		return Result{}, errs
	}

	return Result{Lines: lines, Estimate: staticEstimate(lines)}, errs
}

// staticEstimate sums asm.StaticCost(op) over every assembled Line (the "-estimate" flag; the
// cost table is the VM's own, see DESIGN.md), letting the CLI report a cost estimate without
// needing live stdin to actually run the VM. Each Line is counted once; loops are not unrolled.
func staticEstimate(lines []asm.Line) int {
	total := 0
	for _, l := range lines {
		total += asm.StaticCost(l.Op)
	}
	return total
}
