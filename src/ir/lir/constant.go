package lir

import (
	"math/big"

	"ivc/src/util"
)

// materializeConst builds literal n into a fresh virtual register using the most-significant-
// bit-first doubling scheme of spec.md section 4.1 -- an RST followed by O(log N) SHL/INC
// pairs -- rather than unary repetition. Returns the vreg holding n.
func (e *Emitter) materializeConst(n *big.Int) int {
	r := e.freshVreg()
	if n.Sign() == 0 {
		e.emit(Instruction{Op: OpRst, Reg: r})
		return r
	}

	bl := util.BitLen(n)
	e.emit(Instruction{Op: OpRst, Reg: r})
	if util.Bit(n, bl) {
		e.emit(Instruction{Op: OpInc, Reg: r})
	}
	for i1 := bl - 1; i1 >= 0; i1-- {
		e.emit(Instruction{Op: OpShl, Reg: r})
		if util.Bit(n, i1) {
			e.emit(Instruction{Op: OpInc, Reg: r})
		}
	}
	return r
}

// materializeConstInt is materializeConst for a small compile-time-known non-negative int,
// used throughout address computation (static memory bases and literal indices).
func (e *Emitter) materializeConstInt(n int) int {
	return e.materializeConst(big.NewInt(int64(n)))
}
