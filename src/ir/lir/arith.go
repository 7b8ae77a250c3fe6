package lir

import "ivc/src/frontend"

// emitExpr lowers Expr e, leaving its result in the accumulator.
func (e *Emitter) emitExpr(expr frontend.Expr) {
	switch expr.Kind {
	case frontend.ExprValue:
		e.loadValueIntoA(expr.Value)
	case frontend.ExprBinary:
		e.emitBinary(expr.Lhs, expr.Op, expr.Rhs)
	default:
		panic("lir: unhandled expression kind")
	}
}

// emitBinary lowers a binary arithmetic expression, leaving the result in the accumulator.
func (e *Emitter) emitBinary(lhs frontend.Value, op frontend.BinOp, rhs frontend.Value) {
	switch op {
	case frontend.OpAdd:
		c := e.materializeValueVreg(rhs)
		e.loadValueIntoA(lhs)
		e.emit(Instruction{Op: OpAdd, Reg: c})
	case frontend.OpSub:
		c := e.materializeValueVreg(rhs)
		e.loadValueIntoA(lhs)
		e.emit(Instruction{Op: OpSub, Reg: c})
	case frontend.OpMul:
		e.emitMul(lhs, rhs)
	case frontend.OpDiv:
		e.emitDivMod(lhs, rhs, false)
	case frontend.OpMod:
		e.emitDivMod(lhs, rhs, true)
	default:
		panic("lir: unhandled binary operator")
	}
}

// emitMul lowers lhs * rhs via shift-and-add multiplication (spec.md section 4.1): a working
// copy of lhs is doubled every iteration, a working copy of rhs is halved, and the multiplicand
// is added into a fresh accumulator vreg whenever the current low bit of the multiplier is set.
// The multiplier's low bit is the exact saturating difference between it and its own
// even half doubled back, since that difference is always 0 or 1.
func (e *Emitter) emitMul(lhs, rhs frontend.Value) {
	mcand := e.copyValueToFreshVreg(lhs)
	mplier := e.copyValueToFreshVreg(rhs)
	acc := e.freshVreg()
	e.emit(Instruction{Op: OpRst, Reg: acc})

	head := e.labels.New("LMulHead")
	end := e.labels.New("LMulEnd")
	skip := e.labels.New("LMulSkip")

	half := e.freshVreg()
	doubled := e.freshVreg()

	e.emit(Instruction{Op: OpLabel, Label: head})
	e.emit(Instruction{Op: OpGet, Reg: mplier})
	e.emit(Instruction{Op: OpJzero, Label: end})
	e.emit(Instruction{Op: OpPut, Reg: half})
	e.emit(Instruction{Op: OpShr, Reg: half})
	e.emit(Instruction{Op: OpGet, Reg: half})
	e.emit(Instruction{Op: OpPut, Reg: doubled})
	e.emit(Instruction{Op: OpShl, Reg: doubled})
	e.emit(Instruction{Op: OpGet, Reg: mplier})
	e.emit(Instruction{Op: OpSub, Reg: doubled})
	e.emit(Instruction{Op: OpJzero, Label: skip})
	e.emit(Instruction{Op: OpGet, Reg: acc})
	e.emit(Instruction{Op: OpAdd, Reg: mcand})
	e.emit(Instruction{Op: OpPut, Reg: acc})
	e.emit(Instruction{Op: OpLabel, Label: skip})
	e.emit(Instruction{Op: OpShl, Reg: mcand})
	e.emit(Instruction{Op: OpShr, Reg: mplier})
	e.emit(Instruction{Op: OpJump, Label: head})
	e.emit(Instruction{Op: OpLabel, Label: end})
	e.emit(Instruction{Op: OpGet, Reg: acc})
}

// emitDivMod lowers lhs / rhs (wantRemainder=false) or lhs % rhs (wantRemainder=true) using
// restoring binary long division over five working vregs -- a dividend/remainder copy, a
// divisor copy, a quotient accumulator, a shifted-divisor scratch and a shift counter --
// after shifting the divisor up to the dividend's own magnitude. Division by zero branches
// around the loop entirely, leaving quotient 0 and remainder equal to the dividend.
func (e *Emitter) emitDivMod(lhs, rhs frontend.Value, wantRemainder bool) {
	remainder := e.copyValueToFreshVreg(lhs)
	divisor := e.copyValueToFreshVreg(rhs)
	quotient := e.freshVreg()
	e.emit(Instruction{Op: OpRst, Reg: quotient})
	shifted := e.freshVreg()
	e.emit(Instruction{Op: OpGet, Reg: divisor})
	e.emit(Instruction{Op: OpPut, Reg: shifted})
	shiftCount := e.freshVreg()
	e.emit(Instruction{Op: OpRst, Reg: shiftCount})

	byZero := e.labels.New("LDivByZero")
	grow := e.labels.New("LDivGrow")
	growDone := e.labels.New("LDivGrowDone")
	shrinkHead := e.labels.New("LDivShrinkHead")
	thenRestore := e.labels.New("LDivRestore")
	elseSkip := e.labels.New("LDivSkip")
	end := e.labels.New("LDivEnd")

	e.emit(Instruction{Op: OpGet, Reg: divisor})
	e.emit(Instruction{Op: OpJzero, Label: byZero})

	// Grow shifted until it exceeds remainder, counting how many doublings that took.
	e.emit(Instruction{Op: OpLabel, Label: grow})
	e.emit(Instruction{Op: OpGet, Reg: shifted})
	e.emit(Instruction{Op: OpSub, Reg: remainder})
	e.emit(Instruction{Op: OpJpos, Label: growDone})
	e.emit(Instruction{Op: OpShl, Reg: shifted})
	e.emit(Instruction{Op: OpInc, Reg: shiftCount})
	e.emit(Instruction{Op: OpJump, Label: grow})
	e.emit(Instruction{Op: OpLabel, Label: growDone})

	// Shrink shifted back down, restoring one bit of the quotient per step.
	e.emit(Instruction{Op: OpLabel, Label: shrinkHead})
	e.emit(Instruction{Op: OpGet, Reg: shiftCount})
	e.emit(Instruction{Op: OpJzero, Label: end})
	e.emit(Instruction{Op: OpShr, Reg: shifted})
	e.emit(Instruction{Op: OpDec, Reg: shiftCount})
	e.emit(Instruction{Op: OpGet, Reg: shifted})
	e.emit(Instruction{Op: OpSub, Reg: remainder})
	e.emit(Instruction{Op: OpJpos, Label: elseSkip})
	e.emit(Instruction{Op: OpLabel, Label: thenRestore})
	e.emit(Instruction{Op: OpGet, Reg: remainder})
	e.emit(Instruction{Op: OpSub, Reg: shifted})
	e.emit(Instruction{Op: OpPut, Reg: remainder})
	e.emit(Instruction{Op: OpShl, Reg: quotient})
	e.emit(Instruction{Op: OpInc, Reg: quotient})
	e.emit(Instruction{Op: OpJump, Label: shrinkHead})
	e.emit(Instruction{Op: OpLabel, Label: elseSkip})
	e.emit(Instruction{Op: OpShl, Reg: quotient})
	e.emit(Instruction{Op: OpJump, Label: shrinkHead})

	e.emit(Instruction{Op: OpLabel, Label: byZero})
	e.emit(Instruction{Op: OpLabel, Label: end})
	if wantRemainder {
		e.emit(Instruction{Op: OpGet, Reg: remainder})
	} else {
		e.emit(Instruction{Op: OpGet, Reg: quotient})
	}
}
