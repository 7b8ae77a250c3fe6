package regalloc

import (
	"fmt"
	"math/big"
	"sort"

	"ivc/src/ir/cfg"
	"ivc/src/ir/lir"
	"ivc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// NumPhysicalRegs is the size of the target VM's register file (A through H).
const NumPhysicalRegs = 8

// NonAccRegs is the number of physical registers available to non-accumulator vregs: A is
// permanently reserved for vreg 0, leaving B..H (spec.md section 4.3: "k = 7; A is reserved").
const NonAccRegs = NumPhysicalRegs - 1

// retryLimit bounds how many simplify passes are attempted before declaring the interference
// graph untangleable without a fresh spill (spec.md section 4.3; mirrors vslc's own constant).
const retryLimit = 128

// maxSpillRounds is a fixed bound on the outer spill-and-restart loop (one spill per round);
// Allocate reports an error once it is exceeded.
const maxSpillRounds = 4096

// Result is the outcome of allocating one procedure's Instruction stream: the rewritten stream
// (unchanged unless spilling occurred) and the colour (0..7, A..H) assigned to every vreg.
type Result struct {
	Stream []lir.Instruction
	Colors map[int]int
}

// ---------------------
// ----- Functions -----
// ---------------------

// Allocate assigns a physical register to every vreg referenced in stream, spilling to memory
// and restarting liveness/interference analysis from scratch whenever the graph cannot be
// coloured with NumPhysicalRegs colours (spec.md section 4.3: "spill-and-restart", bounded by
// maxSpillRounds).
func Allocate(stream []lir.Instruction, counters *lir.Counters) (Result, error) {
	for round := 0; round < maxSpillRounds; round++ {
		g := cfg.Build(stream)
		blockLive := cfg.ComputeLiveness(g)
		instrLive := cfg.ComputeInstructionLiveness(g, blockLive)
		nodes := buildInterferenceGraph(g, instrLive)

		colors, spillVreg, ok := colorGraph(nodes, NonAccRegs)
		if ok {
			return Result{Stream: stream, Colors: colors}, nil
		}
		stream = rewriteSpill(stream, spillVreg, counters)
	}
	return Result{}, fmt.Errorf("regalloc: exceeded %d spill rounds without a valid colouring", maxSpillRounds)
}

// buildInterferenceGraph adds an edge between every vreg defined at some instruction and every
// other vreg live immediately after that instruction (spec.md section 4.3), using the
// per-instruction liveness cfg.ComputeInstructionLiveness produced.
func buildInterferenceGraph(g *cfg.CFG, instrLive [][]cfg.InstrLive) map[int]*node {
	nodes := map[int]*node{}
	ensure := func(v int) *node {
		if _, ok := nodes[v]; !ok {
			nodes[v] = newNode(v)
		}
		return nodes[v]
	}

	for i1, b := range g.Blocks {
		for j, instr := range b.Instrs {
			for v := range instrLive[i1][j].LiveOut {
				ensure(v).liveLen++
			}

			defs := lir.OverwriteSet(instr)
			if len(defs) == 0 {
				continue
			}
			d := defs[0]
			ensure(d)
			for other := range instrLive[i1][j].LiveOut {
				if other != d {
					addEdge(nodes, d, other)
				}
			}
		}
	}
	ensure(lir.AccReg)
	return nodes
}

// colorGraph runs Chaitin's simplify/select over nodes, assigning every non-accumulator vreg
// one of k colours numbered 1..k (registers B..H). vreg 0 (the accumulator) is pre-coloured to
// 0 and never pushed through simplify, since it is permanently bound to physical register A
// (spec.md section 3, section 4.3). On failure -- either simplify getting stuck for
// retryLimit rounds, or a select-phase node with no free colour among its already coloured
// neighbours -- it returns ok=false and the vreg that should be spilled next.
func colorGraph(nodes map[int]*node, k int) (colors map[int]int, spillVreg int, ok bool) {
	nodes[lir.AccReg].color = 0

	remaining := map[int]bool{}
	for v := range nodes {
		if v != lir.AccReg {
			remaining[v] = true
		}
	}

	stack := util.Stack{}
	for rt := retryLimit; len(remaining) > 0 && rt > 0; rt-- {
		progressed := false
		// Scan candidates in ascending vreg id order so the stack's push order -- and thus
		// every vreg's eventual colour -- depends only on the interference graph, never on Go's
		// randomised map iteration (spec.md section 5: identical ASTs must assemble identically).
		for _, v := range sortedKeys(remaining) {
			n := nodes[v]
			if n.degree(nodes) < k {
				n.enabled = false
				stack.Push(v)
				delete(remaining, v)
				progressed = true
			}
		}
		if !progressed {
			// Spill candidate: highest live-range-length/degree ratio, ties broken by the
			// lowest vreg id (spec.md section 4.3).
			victim, bestWeight := -1, -1.0
			for _, v := range sortedKeys(remaining) {
				w := nodes[v].spillWeight(nodes)
				if victim < 0 || w > bestWeight {
					victim, bestWeight = v, w
				}
			}
			nodes[victim].enabled = false
			stack.Push(victim)
			delete(remaining, victim)
		}
	}
	if len(remaining) > 0 {
		first := sortedKeys(remaining)[0]
		return nil, first, false
	}

	for e := stack.Pop(); e != nil; e = stack.Pop() {
		v := e.(int)
		n := nodes[v]
		n.enabled = true
		used := n.usedColors(nodes)
		c := -1
		for cand := 1; cand <= k; cand++ {
			if !used[cand] {
				c = cand
				break
			}
		}
		if c < 0 {
			return nil, v, false
		}
		n.color = c
	}

	colors = make(map[int]int, len(nodes))
	for _, v := range sortedKeys(nodes) {
		colors[v] = nodes[v].color
	}
	return colors, -1, true
}

// sortedKeys returns the vreg ids of m in ascending order. Both simplify's candidate scan and
// the optimistic spill victim scan must walk m in a fixed order -- ranging a Go map directly
// visits entries in randomised order, which would make the resulting stack (and therefore the
// colouring select picks) vary from run to run on the exact same input.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for v := range m {
		keys = append(keys, v)
	}
	sort.Ints(keys)
	return keys
}

// rewriteSpill replaces every reference to victim in stream with a freshly allocated temp vreg,
// reloaded from a new memory slot right before each instruction that reads victim and stored
// back right after each instruction that writes it. Both legs stash and restore the
// accumulator around themselves, since neither LOAD nor STORE may be allowed to clobber A's
// value across an instruction that did not itself ask to touch the accumulator.
func rewriteSpill(stream []lir.Instruction, victim int, counters *lir.Counters) []lir.Instruction {
	slot := counters.Mem(1)
	out := make([]lir.Instruction, 0, len(stream)+8)

	for _, instr := range stream {
		reads := containsInt(lir.ReadSet(instr), victim)
		writes := containsInt(lir.OverwriteSet(instr), victim)
		if !reads && !writes {
			out = append(out, instr)
			continue
		}

		temp := counters.Vreg()

		if reads {
			stash := counters.Vreg()
			mar := counters.Vreg()
			out = append(out,
				lir.Instruction{Op: lir.OpPut, Reg: stash, Comment: "spill reload: save A"},
			)
			out = append(out, materializeConstInto(mar, slot)...)
			out = append(out,
				lir.Instruction{Op: lir.OpLoad, Reg: mar, Comment: "spill reload"},
				lir.Instruction{Op: lir.OpPut, Reg: temp},
				lir.Instruction{Op: lir.OpGet, Reg: stash, Comment: "spill reload: restore A"},
			)
		}

		rewritten := instr
		rewritten.Reg = temp
		out = append(out, rewritten)

		if writes {
			stash := counters.Vreg()
			mar := counters.Vreg()
			out = append(out,
				lir.Instruction{Op: lir.OpPut, Reg: stash, Comment: "spill store: save A"},
				lir.Instruction{Op: lir.OpGet, Reg: temp},
			)
			out = append(out, materializeConstInto(mar, slot)...)
			out = append(out,
				lir.Instruction{Op: lir.OpStore, Reg: mar, Comment: "spill store"},
				lir.Instruction{Op: lir.OpGet, Reg: stash, Comment: "spill store: restore A"},
			)
		}
	}
	return out
}

// materializeConstInto builds the non-negative literal n into vreg r using the same
// most-significant-bit-first doubling scheme as lir.Emitter.materializeConst, duplicated here
// since spill rewriting runs after emission and no longer has an Emitter to call through.
func materializeConstInto(r int, n int) []lir.Instruction {
	if n == 0 {
		return []lir.Instruction{{Op: lir.OpRst, Reg: r}}
	}
	bl := bigBitLen(n)
	var out []lir.Instruction
	out = append(out, lir.Instruction{Op: lir.OpRst, Reg: r})
	if bigBit(n, bl) {
		out = append(out, lir.Instruction{Op: lir.OpInc, Reg: r})
	}
	for i1 := bl - 1; i1 >= 0; i1-- {
		out = append(out, lir.Instruction{Op: lir.OpShl, Reg: r})
		if bigBit(n, i1) {
			out = append(out, lir.Instruction{Op: lir.OpInc, Reg: r})
		}
	}
	return out
}

func bigBitLen(n int) int {
	return util.BitLen(big64(n))
}

func bigBit(n, i int) bool {
	return util.Bit(big64(n), i)
}

func big64(n int) *big.Int {
	return big.NewInt(int64(n))
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
