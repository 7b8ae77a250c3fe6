package lir

import "ivc/src/frontend"

// condJumps is the result of lowering one Condition: the indices, into the emitter's current
// output buffer, of every not-yet-backpatched jump instruction taken when the condition holds.
// Falling through the end of the emitted sequence without any of them firing means the
// condition is false; the caller backpatches trueJumps to wherever "true" should transfer to.
type condJumps struct {
	trueJumps []int
}

// patchTo backpatches every instruction index in idxs to jump to label.
func (e *Emitter) patchTo(idxs []int, label string) {
	for _, i1 := range idxs {
		e.out[i1].Label = label
	}
}

// emitCondition lowers Condition c using saturating subtraction (spec.md section 4.1): a <= b
// iff max(0, a-b) == 0, and every relational operator reduces to one or two such tests. Each
// relational operator emits a fixed instruction skeleton with placeholder jump targets, whose
// indices are returned so the caller can backpatch them once the structural label is known.
func (e *Emitter) emitCondition(c frontend.Condition) condJumps {
	a := e.materializeValueVreg(c.Lhs)
	b := e.materializeValueVreg(c.Rhs)

	switch c.Op {
	case frontend.RelEq:
		// Equal iff both saturating differences are zero.
		cont := e.labels.New("LCondCont")
		e.emit(Instruction{Op: OpGet, Reg: a})
		e.emit(Instruction{Op: OpSub, Reg: b})
		j1 := e.emitPlaceholderJump(OpJpos)
		e.emit(Instruction{Op: OpGet, Reg: b})
		e.emit(Instruction{Op: OpSub, Reg: a})
		j2 := e.emitPlaceholderJump(OpJpos)
		trueJ := e.emitPlaceholderJump(OpJump)
		e.patchTo([]int{j1, j2}, cont)
		e.emit(Instruction{Op: OpLabel, Label: cont})
		return condJumps{trueJumps: []int{trueJ}}

	case frontend.RelNe:
		// Not-equal iff at least one saturating difference is nonzero.
		e.emit(Instruction{Op: OpGet, Reg: a})
		e.emit(Instruction{Op: OpSub, Reg: b})
		j1 := e.emitPlaceholderJump(OpJpos)
		e.emit(Instruction{Op: OpGet, Reg: b})
		e.emit(Instruction{Op: OpSub, Reg: a})
		j2 := e.emitPlaceholderJump(OpJpos)
		return condJumps{trueJumps: []int{j1, j2}}

	case frontend.RelLt:
		// a < b iff max(0, a-b) == 0 and a != b, i.e. max(0, b-a) > 0.
		e.emit(Instruction{Op: OpGet, Reg: b})
		e.emit(Instruction{Op: OpSub, Reg: a})
		j1 := e.emitPlaceholderJump(OpJpos)
		return condJumps{trueJumps: []int{j1}}

	case frontend.RelLe:
		// a <= b iff max(0, a-b) == 0.
		e.emit(Instruction{Op: OpGet, Reg: a})
		e.emit(Instruction{Op: OpSub, Reg: b})
		j1 := e.emitPlaceholderJump(OpJzero)
		return condJumps{trueJumps: []int{j1}}

	case frontend.RelGt:
		// a > b iff max(0, a-b) > 0.
		e.emit(Instruction{Op: OpGet, Reg: a})
		e.emit(Instruction{Op: OpSub, Reg: b})
		j1 := e.emitPlaceholderJump(OpJpos)
		return condJumps{trueJumps: []int{j1}}

	case frontend.RelGe:
		// a >= b iff max(0, b-a) == 0.
		e.emit(Instruction{Op: OpGet, Reg: b})
		e.emit(Instruction{Op: OpSub, Reg: a})
		j1 := e.emitPlaceholderJump(OpJzero)
		return condJumps{trueJumps: []int{j1}}

	default:
		panic("lir: unhandled relational operator")
	}
}

// emitPlaceholderJump emits a jump of kind op with an empty label, to be filled in later by
// patchTo, and returns its index in the emitter's output buffer.
func (e *Emitter) emitPlaceholderJump(op Op) int {
	e.emit(Instruction{Op: op})
	return len(e.out) - 1
}
