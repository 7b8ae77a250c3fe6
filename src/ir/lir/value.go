package lir

import (
	"ivc/src/frontend"
	"ivc/src/util"
)

// loadIdentifierIntoA lowers a read of id, leaving its current value in the accumulator. Every
// plain (non-pointer) variable -- scalar or array alike -- lives in static memory and is
// addressed via materializeAddress; only a scalar pointer parameter holds its address directly
// in its own vreg, with no indexing (spec.md section 4.1).
func (e *Emitter) loadIdentifierIntoA(id frontend.Identifier) {
	info, ok := e.resolve(id)
	if !ok {
		return
	}
	if info.IsPointer && !info.IsArray {
		e.emit(Instruction{Op: OpLoad, Reg: info.Vreg})
		return
	}
	mar := e.materializeAddress(id, info)
	e.emit(Instruction{Op: OpLoad, Reg: mar})
}

// storeAIntoIdentifier lowers a write of the accumulator's current value into id, the mirror
// image of loadIdentifierIntoA.
func (e *Emitter) storeAIntoIdentifier(id frontend.Identifier) {
	info, ok := e.resolve(id)
	if !ok {
		return
	}
	if info.IsPointer && !info.IsArray {
		e.emit(Instruction{Op: OpStore, Reg: info.Vreg})
		return
	}
	mar := e.materializeAddress(id, info)
	e.emit(Instruction{Op: OpStore, Reg: mar})
}

// materializeAddress computes the memory address denoted by Identifier id into a fresh vreg
// (spec.md section 4.1: base(a) + i, with i absent for a plain scalar). For a plain variable,
// base is a compile-time static memory address; for an array parameter (IsPointer && IsArray),
// base is the value held in the parameter's own vreg, since callee-by-reference arrays pass
// their base address that way.
func (e *Emitter) materializeAddress(id frontend.Identifier, info VarInfo) int {
	if info.IsPointer {
		e.emit(Instruction{Op: OpGet, Reg: info.Vreg})
	} else {
		base := e.materializeConstInt(info.Base)
		e.emit(Instruction{Op: OpGet, Reg: base})
	}

	switch id.Index {
	case frontend.IndexNone:
		if info.IsArray {
			e.errs.Add(util.StageEmit, id.Line, id.Col, "array %q used without an index", id.Name)
		}
	case frontend.IndexLiteral:
		if id.IndexLit != 0 {
			off := e.materializeConstInt(id.IndexLit)
			e.emit(Instruction{Op: OpAdd, Reg: off})
		}
	case frontend.IndexIdent:
		idxID := frontend.Identifier{Name: id.IndexIdent, Line: id.Line, Col: id.Col}
		idxVreg := e.valueVregForIdent(idxID)
		e.emit(Instruction{Op: OpAdd, Reg: idxVreg})
	}

	mar := e.freshVreg()
	e.emit(Instruction{Op: OpPut, Reg: mar})
	return mar
}

// valueVregForIdent returns a fresh vreg holding id's current value, without disturbing the
// accumulator's prior contents: save A, load id's value, copy it out, restore A.
func (e *Emitter) valueVregForIdent(id frontend.Identifier) int {
	if _, ok := e.resolve(id); !ok {
		return e.freshVreg()
	}
	saved := e.freshVreg()
	e.emit(Instruction{Op: OpPut, Reg: saved})
	e.loadIdentifierIntoA(id)
	r := e.freshVreg()
	e.emit(Instruction{Op: OpPut, Reg: r})
	e.emit(Instruction{Op: OpGet, Reg: saved})
	return r
}

// materializeValueVreg returns a vreg holding v's value: a freshly built constant, or an
// identifier's value per valueVregForIdent.
func (e *Emitter) materializeValueVreg(v frontend.Value) int {
	if v.Kind == frontend.ValueNum {
		return e.materializeConst(v.Num)
	}
	return e.valueVregForIdent(v.Ident)
}

// copyValueToFreshVreg returns a vreg holding v's value that is always distinct from any
// variable's own storage, safe for the caller to mutate in place (spec.md section 4.1:
// multiplication and division both shift a working copy, never the source operand).
func (e *Emitter) copyValueToFreshVreg(v frontend.Value) int {
	src := e.materializeValueVreg(v)
	saved := e.freshVreg()
	e.emit(Instruction{Op: OpPut, Reg: saved})
	e.emit(Instruction{Op: OpGet, Reg: src})
	r := e.freshVreg()
	e.emit(Instruction{Op: OpPut, Reg: r})
	e.emit(Instruction{Op: OpGet, Reg: saved})
	return r
}

// loadValueIntoA lowers a read of Value v, leaving its value in the accumulator.
func (e *Emitter) loadValueIntoA(v frontend.Value) {
	if v.Kind == frontend.ValueNum {
		r := e.materializeConst(v.Num)
		e.emit(Instruction{Op: OpGet, Reg: r})
		return
	}
	e.loadIdentifierIntoA(v.Ident)
}
