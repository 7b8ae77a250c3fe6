package lir

import (
	"ivc/src/frontend"
	"ivc/src/util"
)

// emitCommand lowers one Command, appending to the emitter's current output buffer. The switch
// is exhaustive over frontend.CommandKind (spec.md section 9: the set of variants is closed).
func (e *Emitter) emitCommand(c frontend.Command) {
	switch c.Kind {
	case frontend.CmdAssign:
		e.emitExpr(c.Expr)
		e.storeAIntoIdentifier(c.Target)
	case frontend.CmdRead:
		e.emit(Instruction{Op: OpRead})
		e.storeAIntoIdentifier(c.ReadTarget)
	case frontend.CmdWrite:
		e.loadValueIntoA(c.WriteValue)
		e.emit(Instruction{Op: OpWrite})
	case frontend.CmdIf:
		e.emitIf(c)
	case frontend.CmdWhile:
		e.emitWhile(c)
	case frontend.CmdRepeat:
		e.emitRepeat(c)
	case frontend.CmdCall:
		e.emitCall(c)
	case frontend.CmdInlinedProcedure:
		for _, inner := range c.Inlined {
			e.emitCommand(inner)
		}
	default:
		panic("lir: unhandled command kind")
	}
}

// emitIf lowers "IF cond THEN then [ELSE else] ENDIF" (spec.md section 4.1). The condition's
// true-jumps are patched straight to the then-branch; falling through the condition (false)
// reaches an explicit JUMP around the then-branch, to the else-branch if present or to the
// shared end label otherwise. The then-branch itself jumps past the else-branch at its end.
func (e *Emitter) emitIf(c frontend.Command) {
	jumps := e.emitCondition(c.Cond)
	thenLbl := e.labels.New(util.LabelIf)

	if !c.HasElse {
		endLbl := e.labels.New(util.LabelIfEnd)
		e.patchTo(jumps.trueJumps, thenLbl)
		e.emit(Instruction{Op: OpJump, Label: endLbl})
		e.emit(Instruction{Op: OpLabel, Label: thenLbl})
		for _, inner := range c.Then {
			e.emitCommand(inner)
		}
		e.emit(Instruction{Op: OpLabel, Label: endLbl})
		return
	}

	elseLbl := e.labels.New(util.LabelIfElse)
	endLbl := e.labels.New(util.LabelIfElseEnd)
	e.patchTo(jumps.trueJumps, thenLbl)
	e.emit(Instruction{Op: OpJump, Label: elseLbl})
	e.emit(Instruction{Op: OpLabel, Label: thenLbl})
	for _, inner := range c.Then {
		e.emitCommand(inner)
	}
	e.emit(Instruction{Op: OpJump, Label: endLbl})
	e.emit(Instruction{Op: OpLabel, Label: elseLbl})
	for _, inner := range c.Else {
		e.emitCommand(inner)
	}
	e.emit(Instruction{Op: OpLabel, Label: endLbl})
}

// emitWhile lowers "WHILE cond DO then ENDWHILE": the condition is re-evaluated at the loop
// head every iteration, true jumps to the body and false falls through to an explicit JUMP out
// of the loop.
func (e *Emitter) emitWhile(c frontend.Command) {
	headLbl := e.labels.New(util.LabelWhileHead)
	bodyLbl := e.labels.New(util.LabelWhileHead)
	endLbl := e.labels.New(util.LabelWhileEnd)

	e.emit(Instruction{Op: OpLabel, Label: headLbl})
	jumps := e.emitCondition(c.Cond)
	e.patchTo(jumps.trueJumps, bodyLbl)
	e.emit(Instruction{Op: OpJump, Label: endLbl})
	e.emit(Instruction{Op: OpLabel, Label: bodyLbl})
	for _, inner := range c.Then {
		e.emitCommand(inner)
	}
	e.emit(Instruction{Op: OpJump, Label: headLbl})
	e.emit(Instruction{Op: OpLabel, Label: endLbl})
}

// emitRepeat lowers "REPEAT then UNTIL cond": the body executes unconditionally at least once,
// then the condition decides whether to loop back (false) or fall through to the end (true).
func (e *Emitter) emitRepeat(c frontend.Command) {
	headLbl := e.labels.New(util.LabelRepeatHead)
	endLbl := e.labels.New(util.LabelWhileEnd)

	e.emit(Instruction{Op: OpLabel, Label: headLbl})
	for _, inner := range c.Then {
		e.emitCommand(inner)
	}
	jumps := e.emitCondition(c.Cond)
	e.patchTo(jumps.trueJumps, endLbl)
	e.emit(Instruction{Op: OpJump, Label: headLbl})
	e.emit(Instruction{Op: OpLabel, Label: endLbl})
}
