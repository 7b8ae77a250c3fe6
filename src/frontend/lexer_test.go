package frontend

import (
	"testing"

	"ivc/src/util"
)

// TestLexerTokensMainProgram verifies a small but representative source fragment tokenizes in
// order, with correct kinds, lexemes and line/column positions.
func TestLexerTokensMainProgram(t *testing.T) {
	src := "PROGRAM IS\n  x\nIN\n  x := 1 + 2;\nEND"
	errs := util.NewErrorList()
	toks := NewLexer(src, errs).Tokens()
	if errs.HasErrors() {
		t.Fatalf("unexpected lex errors: %s", errs.Error())
	}

	want := []struct {
		kind   Kind
		lexeme string
		line   int
	}{
		{KindProgram, "PROGRAM", 1},
		{KindIs, "IS", 1},
		{KindPidentifier, "x", 2},
		{KindIn, "IN", 3},
		{KindPidentifier, "x", 4},
		{KindWalrus, ":=", 4},
		{KindNum, "1", 4},
		{KindPlus, "+", 4},
		{KindNum, "2", 4},
		{KindSemicolon, ";", 4},
		{KindEnd, "END", 5},
		{KindEOF, "", 5},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Lexeme != w.lexeme || toks[i].Line != w.line {
			t.Errorf("token %d: expected {%v %q line %d}, got {%v %q line %d}",
				i, w.kind, w.lexeme, w.line, toks[i].Kind, toks[i].Lexeme, toks[i].Line)
		}
	}
}

func TestLexerSkipsCommentsAndTrivia(t *testing.T) {
	src := "# a comment\nPROGRAM  # trailing\nIS\nIN\nEND"
	errs := util.NewErrorList()
	toks := NewLexer(src, errs).Tokens()
	if errs.HasErrors() {
		t.Fatalf("unexpected lex errors: %s", errs.Error())
	}
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	want := []Kind{KindProgram, KindIs, KindIn, KindEnd, KindEOF}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(kinds), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: expected %v, got %v", i, k, kinds[i])
		}
	}
}

func TestLexerReportsUnknownCharacter(t *testing.T) {
	errs := util.NewErrorList()
	NewLexer("PROGRAM IS IN @ END", errs).Tokens()
	if !errs.HasErrors() {
		t.Error("expected a lexical error for '@'")
	}
}

func TestLexerTwoCharOperators(t *testing.T) {
	errs := util.NewErrorList()
	toks := NewLexer("a != b >= c <= d", errs).Tokens()
	if errs.HasErrors() {
		t.Fatalf("unexpected lex errors: %s", errs.Error())
	}
	want := []Kind{KindPidentifier, KindBangEquals, KindPidentifier, KindGreaterEquals,
		KindPidentifier, KindLessEquals, KindPidentifier, KindEOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %v, got %v", i, k, toks[i].Kind)
		}
	}
}
