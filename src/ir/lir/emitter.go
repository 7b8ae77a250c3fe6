package lir

import (
	"fmt"

	"ivc/src/frontend"
	"ivc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Counters holds the monotonic vreg, label and memory-slot allocators that are process-wide
// within one compilation unit (spec.md section 5: "strictly single-threaded" -- procedure
// bodies are always lowered one at a time, in declaration order, so the vreg/memory numbering
// a given AST receives never depends on goroutine scheduling).
type Counters struct {
	vreg int
	mem  int
}

// NewCounters returns Counters with the vreg allocator past the reserved accumulator (vreg 0).
func NewCounters() *Counters {
	return &Counters{vreg: 1}
}

// Vreg allocates and returns a fresh virtual register id.
func (c *Counters) Vreg() int {
	v := c.vreg
	c.vreg++
	return v
}

// Mem reserves n consecutive memory addresses and returns the base address.
func (c *Counters) Mem(n int) int {
	base := c.mem
	c.mem += n
	return base
}

// paramSig describes one formal parameter's lowering: the vreg that holds its address
// (spec.md section 4.1: "all is_pointer = true") and whether it denotes an array.
type paramSig struct {
	Name    string
	Vreg    int
	IsArray bool
}

// procSig is the call-site-visible lowering of one Procedure: its callee-reserved
// return-address vreg and its ordered parameter vregs.
type procSig struct {
	Label   string
	RetVreg int
	Params  []paramSig
}

// Emitter lowers one AST Program into a single flat LIR instruction stream (spec.md
// section 4.1). It threads a small amount of scratch mutable state -- the counters, the
// label generator, the symbol table, the error list and a FIFO of pending comments -- as a
// plain struct passed by reference, per spec.md section 9 ("resist introducing globals").
type Emitter struct {
	counters *Counters
	labels   *util.LabelGen
	syms     *SymTab
	errs     *util.ErrorList
	procs    map[string]procSig

	scope   string
	out     []Instruction
	pending []string
}

// newScopedEmitter returns an Emitter sharing program-wide state but with its own output
// buffer and pending-comment FIFO, for scope (a procedure name, or "" for main).
func newScopedEmitter(shared *Emitter, scope string) *Emitter {
	return &Emitter{
		counters: shared.counters,
		labels:   shared.labels,
		syms:     shared.syms,
		errs:     shared.errs,
		procs:    shared.procs,
		scope:    scope,
	}
}

// Emit lowers prog into a flat Instruction stream (spec.md section 4.1). errs collects the
// emission diagnostics: unknown variable, unknown procedure, arity mismatch, and an array used
// without an index. Emit does not check call arguments' kind (scalar vs array) or literal array
// indices against the array's size. threads is accepted (and validated by util.ParseArgs) for command-line
// compatibility with the VM's worker-thread flag, but emission itself always lowers procedures
// one at a time in declaration order: the vreg and memory-slot counters, and the shared symbol
// table, are process-wide mutable state with no natural partition across procedures, and
// spec.md section 5 requires that a given AST always assemble to bit-identical output, which a
// goroutine-scheduling-order-dependent counter fan-out cannot guarantee.
func Emit(prog frontend.Program, threads int, errs *util.ErrorList) ([]Instruction, *SymTab, *Counters) {
	_ = threads
	e := &Emitter{
		counters: NewCounters(),
		labels:   util.NewLabelGen(),
		syms:     NewSymTab(),
		errs:     errs,
		procs:    map[string]procSig{},
	}

	// Pass 1: reserve every procedure's return-address and parameter vregs before any call
	// site is lowered, so forward and mutual calls resolve regardless of declaration order.
	for _, p := range prog.Procedures {
		e.registerProcedure(p)
	}

	bodies := make([][]Instruction, len(prog.Procedures))
	for i1, p := range prog.Procedures {
		bodies[i1] = e.emitProcedureBody(p)
	}

	mainEmitter := newScopedEmitter(e, "")
	mainEmitter.declareLocals(prog.Main.Declarations)
	mainBody := mainEmitter.emitCommands(prog.Main.Commands)

	stream := make([]Instruction, 0, 1)
	stream = append(stream, Instruction{Op: OpJump, Label: "MAIN"})
	for _, b := range bodies {
		stream = append(stream, b...)
	}
	stream = append(stream, Instruction{Op: OpLabel, Label: "MAIN"})
	stream = append(stream, mainBody...)
	stream = append(stream, Instruction{Op: OpHalt})

	return stream, e.syms, e.counters
}

// registerProcedure reserves the return-address vreg and one vreg per parameter for p, and
// records its symbol table bindings and call-site signature. Parameters are always
// callee-by-reference (spec.md section 4.1).
func (e *Emitter) registerProcedure(p frontend.Procedure) {
	sig := procSig{Label: p.Name, RetVreg: e.counters.Vreg()}
	for _, a := range p.Args {
		v := e.counters.Vreg()
		e.syms.Define(p.Name, a.Name, VarInfo{Vreg: v, IsPointer: true, IsArray: a.IsArray})
		sig.Params = append(sig.Params, paramSig{Name: a.Name, Vreg: v, IsArray: a.IsArray})
	}
	e.procs[p.Name] = sig
}

// emitProcedureBody lowers one Procedure into Label{name} ... Jumpr{retVreg}.
func (e *Emitter) emitProcedureBody(p frontend.Procedure) []Instruction {
	se := newScopedEmitter(e, p.Name)
	se.declareLocals(p.Body.Declarations)
	sig := e.procs[p.Name]
	se.note("procedure %s: %d param(s), %d local declaration(s)", p.Name, len(sig.Params), len(p.Body.Declarations))
	se.emit(Instruction{Op: OpLabel, Label: p.Name})
	se.out = append(se.out, se.emitCommands(p.Body.Commands)...)
	se.emit(Instruction{Op: OpJumpr, Reg: sig.RetVreg, Comment: "return"})
	return se.out
}

// declareLocals binds every local Declaration to a fresh static memory region: size 1 for a
// plain scalar, d.Size for an array. Plain (non-pointer) variables have no vreg of their own --
// vregs are reserved for transient computed values (addresses, arithmetic scratch) that are
// actually worth register-allocating, not for long-lived variable storage, and a memory
// address is what lets a scalar be passed by reference to a call (spec.md section 4.1: every
// parameter is callee-by-reference, scalar or array alike).
func (e *Emitter) declareLocals(decls []frontend.Declaration) {
	for _, d := range decls {
		size := d.Size
		if !d.IsArray {
			size = 1
		}
		base := e.counters.Mem(size)
		e.syms.Define(e.scope, d.Name, VarInfo{IsArray: d.IsArray, Base: base, Size: size, Vreg: -1})
	}
}

// note queues a comment to be attached to the very next emitted Instruction (spec.md
// section 9: "a FIFO of pending comments (attached to the next instruction)").
func (e *Emitter) note(format string, args ...interface{}) {
	e.pending = append(e.pending, fmt.Sprintf(format, args...))
}

// emit appends instr to the output stream, attaching (and draining) any pending comment.
func (e *Emitter) emit(instr Instruction) {
	if len(e.pending) > 0 && instr.Comment == "" {
		instr.Comment = e.pending[0]
		e.pending = e.pending[1:]
	}
	e.out = append(e.out, instr)
}

// freshVreg allocates a new virtual register from the shared counters.
func (e *Emitter) freshVreg() int {
	return e.counters.Vreg()
}

// resolve looks up name in the current scope, reporting an unknown-variable emission error
// if it is not declared there (spec.md section 4.1: semantic analysis already rejects this
// for well-formed input, but the emitter must not trust that and never panic on it).
func (e *Emitter) resolve(id frontend.Identifier) (VarInfo, bool) {
	v, ok := e.syms.Lookup(e.scope, id.Name)
	if !ok {
		e.errs.Add(util.StageEmit, id.Line, id.Col, "unknown variable %q", id.Name)
	}
	return v, ok
}

// emitCommands lowers an ordered Command list in a fresh output buffer swap, returning the
// Instructions produced. Used for if/while/repeat bodies, whose Instructions must be
// assembled around the structural labels the caller emits.
func (e *Emitter) emitCommands(cmds []frontend.Command) []Instruction {
	saved := e.out
	e.out = nil
	for _, c := range cmds {
		e.emitCommand(c)
	}
	result := e.out
	e.out = saved
	return result
}
