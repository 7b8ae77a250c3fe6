package cfg

import "ivc/src/ir/lir"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// BlockLive holds the set of virtual registers live at the entry and exit of one Block.
type BlockLive struct {
	LiveIn  map[int]bool
	LiveOut map[int]bool
}

// InstrLive holds the set of virtual registers live immediately after one Instruction -- the
// granularity the register allocator's interference graph is built from (spec.md section 4.3:
// a defined vreg interferes with everything live right after its defining instruction).
type InstrLive struct {
	LiveOut map[int]bool
}

// ---------------------
// ----- Functions -----
// ---------------------

// ComputeLiveness runs the classic backward dataflow fixpoint (spec.md section 4.2) over cfg:
// LiveOut(b) = union of LiveIn(s) for every successor s of b; LiveIn(b) = Use(b) union
// (LiveOut(b) minus Def(b)), with Use/Def composed instruction-by-instruction in reverse
// using lir.ReadSet/lir.OverwriteSet. Iterates to a fixpoint since loops make this a genuine
// fixpoint problem, not a single linear backward pass.
func ComputeLiveness(g *CFG) []*BlockLive {
	n := len(g.Blocks)
	live := make([]*BlockLive, n)
	for i1 := range live {
		live[i1] = &BlockLive{LiveIn: map[int]bool{}, LiveOut: map[int]bool{}}
	}

	for changed := true; changed; {
		changed = false
		for i1 := n - 1; i1 >= 0; i1-- {
			b := g.Blocks[i1]
			out := map[int]bool{}
			for _, s := range b.Succ {
				for v := range live[s].LiveIn {
					out[v] = true
				}
			}
			in := blockTransfer(b, out)
			if !setsEqual(in, live[i1].LiveIn) || !setsEqual(out, live[i1].LiveOut) {
				changed = true
			}
			live[i1].LiveIn = in
			live[i1].LiveOut = out
		}
	}
	return live
}

// ComputeInstructionLiveness re-runs each Block's backward sweep, seeded from its already
// fixpointed LiveOut, recording the live-out set after every single Instruction.
func ComputeInstructionLiveness(g *CFG, blockLive []*BlockLive) [][]InstrLive {
	result := make([][]InstrLive, len(g.Blocks))
	for i1, b := range g.Blocks {
		cur := copySet(blockLive[i1].LiveOut)
		out := make([]InstrLive, len(b.Instrs))
		for j := len(b.Instrs) - 1; j >= 0; j-- {
			out[j] = InstrLive{LiveOut: copySet(cur)}
			instr := b.Instrs[j]
			for _, w := range lir.OverwriteSet(instr) {
				delete(cur, w)
			}
			for _, r := range lir.ReadSet(instr) {
				cur[r] = true
			}
		}
		result[i1] = out
	}
	return result
}

// blockTransfer computes Block b's LiveIn set given its LiveOut set out, sweeping b's
// Instructions in reverse.
func blockTransfer(b *Block, out map[int]bool) map[int]bool {
	cur := copySet(out)
	for j := len(b.Instrs) - 1; j >= 0; j-- {
		instr := b.Instrs[j]
		for _, w := range lir.OverwriteSet(instr) {
			delete(cur, w)
		}
		for _, r := range lir.ReadSet(instr) {
			cur[r] = true
		}
	}
	return cur
}

func copySet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for v := range s {
		out[v] = true
	}
	return out
}

func setsEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if !b[v] {
			return false
		}
	}
	return true
}
