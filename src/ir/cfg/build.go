package cfg

import "ivc/src/ir/lir"

// Build splits stream into Blocks and wires up the successor/predecessor edges between them
// (spec.md section 4.2). A new Block starts at every Label Instruction and at the start of the
// stream; a Block ends right after any control-transferring Instruction
// (JUMP/JPOS/JZERO/JUMPR/HALT) or right before the next Label.
func Build(stream []lir.Instruction) *CFG {
	var blocks []*Block
	var cur []lir.Instruction

	flush := func() {
		if len(cur) == 0 {
			return
		}
		blocks = append(blocks, &Block{ID: len(blocks), Instrs: cur})
		cur = nil
	}

	for _, instr := range stream {
		if instr.Op == lir.OpLabel && len(cur) > 0 {
			flush()
		}
		cur = append(cur, instr)
		switch instr.Op {
		case lir.OpJump, lir.OpJpos, lir.OpJzero, lir.OpJumpr, lir.OpHalt:
			flush()
		}
	}
	flush()

	labelAt := make(map[string]int, len(blocks))
	for i1, b := range blocks {
		if lbl := b.Label(); lbl != "" {
			labelAt[lbl] = i1
		}
	}

	for i1, b := range blocks {
		last := b.Instrs[len(b.Instrs)-1]
		switch last.Op {
		case lir.OpJump:
			if target, ok := labelAt[last.Label]; ok {
				addEdge(blocks, i1, target)
			}
		case lir.OpJpos, lir.OpJzero:
			if target, ok := labelAt[last.Label]; ok {
				addEdge(blocks, i1, target)
			}
			addEdge(blocks, i1, i1+1)
		case lir.OpJumpr, lir.OpHalt:
			// JUMPR returns to an address chosen at runtime by the caller, and HALT ends the
			// program: neither has a statically known successor within this body (spec.md
			// section 4.2). Liveness and register allocation must treat both conservatively,
			// as if the block simply has no successors.
		default:
			addEdge(blocks, i1, i1+1)
		}
	}

	return &CFG{Blocks: blocks}
}
