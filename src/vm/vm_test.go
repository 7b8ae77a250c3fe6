package vm

import (
	"bytes"
	"strings"
	"testing"

	"ivc/src/backend/asm"
	"ivc/src/ir/lir"
)

func TestRunMaterializesAndWritesConstant(t *testing.T) {
	// RST a; INC a (a=1); SHL a (a=2); INC a (a=3); WRITE; HALT
	lines := []asm.Line{
		{Op: lir.OpRst, Reg: "a"},
		{Op: lir.OpInc, Reg: "a"},
		{Op: lir.OpShl, Reg: "a"},
		{Op: lir.OpInc, Reg: "a"},
		{Op: lir.OpWrite},
		{Op: lir.OpHalt},
	}
	out := &bytes.Buffer{}
	v := New(strings.NewReader(""), out)
	cost, err := v.Run(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "3" {
		t.Errorf("expected WRITE to print 3, got %q", out.String())
	}
	if cost <= 0 {
		t.Errorf("expected positive accumulated cost, got %d", cost)
	}
}

func TestRunSaturatingSub(t *testing.T) {
	// RST a; INC a; PUT b (b=1); RST a (a=0); SUB b (a = max(0, 0-1) = 0); WRITE; HALT
	lines := []asm.Line{
		{Op: lir.OpRst, Reg: "a"},
		{Op: lir.OpInc, Reg: "a"},
		{Op: lir.OpPut, Reg: "b"},
		{Op: lir.OpRst, Reg: "a"},
		{Op: lir.OpSub, Reg: "b"},
		{Op: lir.OpWrite},
		{Op: lir.OpHalt},
	}
	out := &bytes.Buffer{}
	v := New(strings.NewReader(""), out)
	if _, err := v.Run(lines); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "0" {
		t.Errorf("expected saturating subtraction to floor at 0, got %q", out.String())
	}
}

func TestRunLoadStoreRoundTrip(t *testing.T) {
	// RST a; INC a (a=1, acts as address 1); PUT b (b=1, address vreg);
	// RST a; INC a; INC a (a=2, the value to store); STORE b (memory[1]=2);
	// RST a (a=0); LOAD b (a = memory[1] = 2); WRITE; HALT
	lines := []asm.Line{
		{Op: lir.OpRst, Reg: "a"},
		{Op: lir.OpInc, Reg: "a"},
		{Op: lir.OpPut, Reg: "b"},
		{Op: lir.OpRst, Reg: "a"},
		{Op: lir.OpInc, Reg: "a"},
		{Op: lir.OpInc, Reg: "a"},
		{Op: lir.OpStore, Reg: "b"},
		{Op: lir.OpRst, Reg: "a"},
		{Op: lir.OpLoad, Reg: "b"},
		{Op: lir.OpWrite},
		{Op: lir.OpHalt},
	}
	out := &bytes.Buffer{}
	v := New(strings.NewReader(""), out)
	if _, err := v.Run(lines); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "2" {
		t.Errorf("expected LOAD to read back the STOREd value 2, got %q", out.String())
	}
}

func TestRunCallReturnConvention(t *testing.T) {
	// Call site at 0-1; 2-3 is the instruction right after the call (what must execute on
	// return); the callee body sits at 4-6.
	lines := []asm.Line{
		{Op: lir.OpStrk, Reg: "c"},  // 0 -> c = 1 (address of the JUMP below)
		{Op: lir.OpJump, Addr: 4},   // 1 -> transfer to the callee
		{Op: lir.OpWrite},           // 2 -> must run only once, after the callee returns
		{Op: lir.OpHalt},            // 3
		{Op: lir.OpRst, Reg: "a"},   // 4 (callee start)
		{Op: lir.OpInc, Reg: "a"},   // 5
		{Op: lir.OpJumpr, Reg: "c"}, // 6 -> lr = 1+1 = 2, resuming right after the call site
	}
	out := &bytes.Buffer{}
	v := New(strings.NewReader(""), out)
	if _, err := v.Run(lines); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "1" {
		t.Errorf("expected the call/return sequence to resume after the call site and print 1, got %q", out.String())
	}
}
