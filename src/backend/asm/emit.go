package asm

import (
	"fmt"

	"ivc/src/ir/lir"
)

// resolveLabels performs the first pass over stream (spec.md section 4.4): assigns every
// non-label Instruction a monotonically increasing address starting at 0, and records, for
// every Label Instruction, the address of the very next non-label Instruction.
func resolveLabels(stream []lir.Instruction) map[string]int {
	labels := make(map[string]int)
	addr := 0
	for _, instr := range stream {
		if instr.Op == lir.OpLabel {
			labels[instr.Label] = addr
			continue
		}
		addr++
	}
	return labels
}

// Emit runs the full two-pass assembly: resolveLabels, then a second walk translating every
// non-label Instruction into a Line, substituting vreg operands with their assigned physical
// register (per colors, as produced by regalloc.Allocate) and label operands with their
// resolved address. Emit fails loudly (spec.md section 7, "Emission" error kind) on a vreg with
// no assigned colour or a label with no resolved address, since either means an earlier stage
// produced a malformed stream.
func Emit(stream []lir.Instruction, colors map[int]int) ([]Line, error) {
	labels := resolveLabels(stream)

	lines := make([]Line, 0, len(stream))
	labelComment := ""
	for _, instr := range stream {
		if instr.Op == lir.OpLabel {
			// A label has no line of its own; its comment moves onto the next emitted Line.
			if instr.Comment != "" {
				labelComment = instr.Comment
			}
			continue
		}

		line := Line{Op: instr.Op, Comment: instr.Comment}
		if labelComment != "" {
			if line.Comment != "" {
				line.Comment = labelComment + "; " + line.Comment
			} else {
				line.Comment = labelComment
			}
			labelComment = ""
		}

		if instr.Op.HasRegOperand() {
			c, ok := colors[instr.Reg]
			if !ok {
				return nil, fmt.Errorf("asm: vreg v%d has no assigned register", instr.Reg)
			}
			line.Reg = regLetter(c)
		}

		if instr.Op.HasLabelOperand() {
			addr, ok := labels[instr.Label]
			if !ok {
				return nil, fmt.Errorf("asm: unresolved label %q", instr.Label)
			}
			line.HasAddr = true
			line.Addr = addr
		}

		lines = append(lines, line)
	}
	return lines, nil
}

// Render assembles lines into the final newline-terminated text form (spec.md section 6,
// "Output text format").
func Render(lines []Line) string {
	out := make([]byte, 0, len(lines)*8)
	for _, l := range lines {
		out = append(out, l.String()...)
		out = append(out, '\n')
	}
	return string(out)
}
