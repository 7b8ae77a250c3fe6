package frontend

import (
	"testing"

	"ivc/src/util"
)

func analyzeSource(src string) *util.ErrorList {
	prog, errs := parseSource(src)
	if errs.HasErrors() {
		return errs
	}
	NewAnalyzer(errs).Analyze(prog)
	return errs
}

func TestSemanticUndeclaredVariable(t *testing.T) {
	errs := analyzeSource("PROGRAM IS\nIN\n  x := 1;\nEND")
	if !errs.HasErrors() {
		t.Error("expected an error for assignment to undeclared variable x")
	}
}

func TestSemanticDuplicateDeclaration(t *testing.T) {
	errs := analyzeSource("PROGRAM IS\n  x, x\nIN\nEND")
	if !errs.HasErrors() {
		t.Error("expected an error for duplicate declaration of x")
	}
}

func TestSemanticArrayOutOfBounds(t *testing.T) {
	errs := analyzeSource("PROGRAM IS\n  x[3]\nIN\n  x[5] := 1;\nEND")
	if !errs.HasErrors() {
		t.Error("expected an error for out-of-bounds literal index")
	}
}

func TestSemanticScalarIndexedLikeArray(t *testing.T) {
	errs := analyzeSource("PROGRAM IS\n  x\nIN\n  x[0] := 1;\nEND")
	if !errs.HasErrors() {
		t.Error("expected an error for indexing a scalar")
	}
}

func TestSemanticCallArityMismatch(t *testing.T) {
	src := "PROCEDURE p(a) IS\nIN\nEND\nPROGRAM IS\n  x, y\nIN\n  p(x, y);\nEND"
	errs := analyzeSource(src)
	if !errs.HasErrors() {
		t.Error("expected an error for calling p with the wrong argument count")
	}
}

func TestSemanticCallArgumentKindMismatch(t *testing.T) {
	src := "PROCEDURE p(Ta) IS\nIN\nEND\nPROGRAM IS\n  x\nIN\n  p(x);\nEND"
	errs := analyzeSource(src)
	if !errs.HasErrors() {
		t.Error("expected an error for passing a scalar where an array is required")
	}
}

func TestSemanticUseBeforeInitializationIsWarningOnly(t *testing.T) {
	errs := analyzeSource("PROGRAM IS\n  x, y\nIN\n  y := x + 1;\nEND")
	if errs.HasErrors() {
		t.Fatalf("use-before-initialization must be a warning, not an error: %s", errs.Error())
	}
	found := false
	for _, r := range errs.Records() {
		if r.Warning {
			found = true
		}
	}
	if !found {
		t.Error("expected a use-before-initialization warning to be recorded")
	}
}

func TestSemanticValidProgramHasNoErrors(t *testing.T) {
	src := "PROCEDURE inc(a) IS\nIN\n  a := a + 1;\nEND\n" +
		"PROGRAM IS\n  x, arr[4]\nIN\n  x := 0;\n  READ x;\n  inc(x);\n  arr[0] := x;\n  WRITE arr[0];\nEND"
	errs := analyzeSource(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected semantic errors for a well-formed program: %s", errs.Error())
	}
}
