package asm

import "ivc/src/ir/lir"

// StaticCost returns the cost charged to op at runtime by the VM's execution loop (spec.md
// section 4.5: Load/Store are memory-touching and cost 50, Add/Sub cost 5, Read/Write are the
// only I/O-bound ops and cost 100, everything else costs 1). Exposed separately from the
// interpreter so the CLI's "-estimate" flag can total an assembled program's expected cost
// without ever running it against live stdin.
func StaticCost(op lir.Op) int {
	switch op {
	case lir.OpLoad, lir.OpStore:
		return 50
	case lir.OpAdd, lir.OpSub:
		return 5
	case lir.OpRead, lir.OpWrite:
		return 100
	default:
		return 1
	}
}
