package asm

import (
	"strings"
	"testing"

	"ivc/src/ir/lir"
)

func TestResolveLabelsPointsAtNextNonLabel(t *testing.T) {
	stream := []lir.Instruction{
		{Op: lir.OpRst, Reg: 1},
		{Op: lir.OpLabel, Label: "LOOP"},
		{Op: lir.OpInc, Reg: 1},
		{Op: lir.OpJump, Label: "LOOP"},
	}
	labels := resolveLabels(stream)
	if labels["LOOP"] != 1 {
		t.Errorf("expected LOOP at address 1, got %d", labels["LOOP"])
	}
}

func TestEmitTranslatesRegistersAndAddresses(t *testing.T) {
	stream := []lir.Instruction{
		{Op: lir.OpRst, Reg: 1},
		{Op: lir.OpLabel, Label: "LOOP"},
		{Op: lir.OpInc, Reg: 1},
		{Op: lir.OpJump, Label: "LOOP"},
		{Op: lir.OpHalt},
	}
	colors := map[int]int{1: 2} // vreg 1 -> register c
	lines, err := Emit(stream, colors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (label dropped), got %d", len(lines))
	}
	if lines[0].Reg != "c" {
		t.Errorf("expected register c, got %q", lines[0].Reg)
	}
	if !lines[2].HasAddr || lines[2].Addr != 1 {
		t.Errorf("expected JUMP to resolve to address 1, got %+v", lines[2])
	}
	rendered := Render(lines)
	if !strings.Contains(rendered, "JUMP 1") {
		t.Errorf("expected rendered output to contain \"JUMP 1\":\n%s", rendered)
	}
}

func TestEmitRejectsUnresolvedVreg(t *testing.T) {
	stream := []lir.Instruction{{Op: lir.OpRst, Reg: 5}}
	if _, err := Emit(stream, map[int]int{}); err == nil {
		t.Error("expected an error for an uncoloured vreg")
	}
}
