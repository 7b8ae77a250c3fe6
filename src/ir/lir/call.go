package lir

import (
	"ivc/src/frontend"
	"ivc/src/util"
)

// emitCall lowers a procedure call (spec.md section 4.1): every argument is passed by
// reference, so each one's address is materialized into the callee's corresponding parameter
// vreg, then the caller stores its own return address with STRK before jumping to the callee's
// entry label. Control resumes at the instruction right after the JUMP once the callee's
// JUMPR fires.
func (e *Emitter) emitCall(c frontend.Command) {
	sig, ok := e.procs[c.CallName]
	if !ok {
		e.errs.Add(util.StageEmit, c.Line, c.Col, "call to undeclared procedure %q", c.CallName)
		return
	}
	if len(sig.Params) != len(c.CallArgs) {
		e.errs.Add(util.StageEmit, c.Line, c.Col, "procedure %q expects %d argument(s), got %d",
			c.CallName, len(sig.Params), len(c.CallArgs))
		return
	}

	for i1, argName := range c.CallArgs {
		param := sig.Params[i1]
		argID := frontend.Identifier{Name: argName, Line: c.Line, Col: c.Col}
		info, ok := e.resolve(argID)
		if !ok {
			continue
		}
		e.emit(Instruction{Op: OpGet, Reg: e.argAddressVreg(argID, info)})
		e.emit(Instruction{Op: OpPut, Reg: param.Vreg, Comment: "arg " + param.Name})
	}

	e.emit(Instruction{Op: OpStrk, Reg: sig.RetVreg})
	e.emit(Instruction{Op: OpJump, Label: sig.Label, Comment: "call " + c.CallName})
}

// argAddressVreg returns a vreg holding the address to hand the callee for argID: the
// parameter's own address vreg if argID is itself a by-reference parameter (its vreg already
// holds an address, forwarded as-is), or a freshly materialized constant for a plain
// variable's static storage base (scalar or array, since both now live in memory).
func (e *Emitter) argAddressVreg(argID frontend.Identifier, info VarInfo) int {
	if info.IsPointer {
		return info.Vreg
	}
	return e.materializeConstInt(info.Base)
}
