// Package asm translates a post-allocation lir.Instruction stream into the VM's concrete text
// form via a two-pass label resolution (spec.md section 4.4), grounded on elsie's
// read-then-resolve assembler shape (internal/asm/assembler.go): first pass assigns addresses
// and a symbol table, second pass emits the final Lines against it.
package asm

import (
	"fmt"
	"strings"

	"ivc/src/ir/lir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Line is one assembled VM instruction: a mnemonic plus at most one operand, which is either a
// register letter or a decimal jump address, never both (spec.md section 4.4).
type Line struct {
	Op      lir.Op
	Reg     string // Single lowercase letter a..h. Empty if this Line carries no register operand.
	HasAddr bool
	Addr    int
	Comment string
}

// ---------------------
// ----- Functions -----
// ---------------------

// String renders l exactly as spec.md section 4.4 prescribes: uppercase mnemonic, optional
// single operand, optional trailing "# comment".
func (l Line) String() string {
	sb := strings.Builder{}
	sb.WriteString(l.Op.String())
	if l.Reg != "" {
		sb.WriteByte(' ')
		sb.WriteString(l.Reg)
	} else if l.HasAddr {
		sb.WriteByte(' ')
		fmt.Fprintf(&sb, "%d", l.Addr)
	}
	if l.Comment != "" {
		sb.WriteString(" # ")
		sb.WriteString(l.Comment)
	}
	return sb.String()
}

// regLetter maps a colour (0..7, as produced by regalloc.Result.Colors) to its single-letter
// register name, "a".."h".
func regLetter(color int) string {
	return string(rune('a' + color))
}
