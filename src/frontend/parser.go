package frontend

import (
	"ivc/src/util"
	"math/big"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Parser is a hand-written recursive-descent parser over a Token slice, grounded on the same
// chop/match_next/expect shape as the jftt-compiler reference parser this language was
// distilled from, adapted to Go's multi-value returns instead of std::optional chains.
type Parser struct {
	toks []Token
	pos  int
	errs *util.ErrorList
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewParser returns a Parser over toks (normally the output of Lexer.Tokens). Diagnostics are
// appended to errs.
func NewParser(toks []Token, errs *util.ErrorList) *Parser {
	return &Parser{toks: toks, errs: errs}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: KindEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) Token {
	if p.pos+off >= len(p.toks) {
		return Token{Kind: KindEOF}
	}
	return p.toks[p.pos+off]
}

func (p *Parser) at(k Kind) bool { return p.peek().Kind == k }

func (p *Parser) advance() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// expect consumes and returns the next token if its Kind is k; otherwise it records a syntax
// error and returns the zero Token with ok=false.
func (p *Parser) expect(k Kind) (Token, bool) {
	t := p.peek()
	if t.Kind != k {
		p.errs.Add(util.StageParse, t.Line, t.Col, "expected %s but found %s %q", k, t.Kind, t.Lexeme)
		return Token{}, false
	}
	return p.advance(), true
}

// Parse parses the full token stream into a Program. If any syntax error was recorded, the
// returned Program is a best-effort partial tree and the caller must check errs.HasErrors().
func Parse(toks []Token, errs *util.ErrorList) Program {
	p := NewParser(toks, errs)
	return p.parseProgram()
}

func (p *Parser) parseProgram() Program {
	prog := Program{}
	for p.at(KindProcedure) {
		prog.Procedures = append(prog.Procedures, p.parseProcedure())
	}
	if _, ok := p.expect(KindProgram); !ok {
		return prog
	}
	if _, ok := p.expect(KindIs); !ok {
		return prog
	}
	prog.Main = p.parseContext()
	p.expect(KindEnd)
	return prog
}

func (p *Parser) parseProcedure() Procedure {
	tok, _ := p.expect(KindProcedure)
	proc := Procedure{Line: tok.Line, Col: tok.Col}
	name, _ := p.expect(KindPidentifier)
	proc.Name = name.Lexeme
	p.expect(KindLparen)
	for !p.at(KindRparen) && !p.at(KindEOF) {
		isArray := false
		if p.at(KindArrayMark) {
			p.advance()
			isArray = true
		}
		argTok, ok := p.expect(KindPidentifier)
		if !ok {
			break
		}
		proc.Args = append(proc.Args, Arg{Name: argTok.Lexeme, IsArray: isArray, Line: argTok.Line, Col: argTok.Col})
		if p.at(KindComma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(KindRparen)
	p.expect(KindIs)
	proc.Body = p.parseContext()
	p.expect(KindEnd)
	return proc
}

// parseContext parses an optional declaration list, IN, then a command list, matching the
// grammar `[ declarations ] IN commands`.
func (p *Parser) parseContext() Context {
	ctx := Context{}
	if !p.at(KindIn) {
		ctx.Declarations = p.parseDeclarations()
	}
	p.expect(KindIn)
	ctx.Commands = p.parseCommands()
	return ctx
}

func (p *Parser) parseDeclarations() []Declaration {
	var decls []Declaration
	for {
		nameTok, ok := p.expect(KindPidentifier)
		if !ok {
			break
		}
		d := Declaration{Name: nameTok.Lexeme, Line: nameTok.Line, Col: nameTok.Col}
		if p.at(KindLbracket) {
			p.advance()
			sizeTok, ok := p.expect(KindNum)
			if ok {
				d.IsArray = true
				d.Size = parseIntLiteral(sizeTok.Lexeme)
			}
			p.expect(KindRbracket)
		}
		decls = append(decls, d)
		if p.at(KindComma) {
			p.advance()
			continue
		}
		break
	}
	return decls
}

// parseCommands parses zero or more Commands, stopping at the first token that cannot start a
// command (normally a block terminator keyword).
func (p *Parser) parseCommands() []Command {
	var cmds []Command
	for p.isCommandStart() {
		cmds = append(cmds, p.parseCommand())
	}
	return cmds
}

func (p *Parser) isCommandStart() bool {
	switch p.peek().Kind {
	case KindPidentifier, KindIf, KindWhile, KindRepeat, KindRead, KindWrite:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCommand() Command {
	tok := p.peek()
	switch tok.Kind {
	case KindIf:
		return p.parseIf()
	case KindWhile:
		return p.parseWhile()
	case KindRepeat:
		return p.parseRepeat()
	case KindRead:
		return p.parseRead()
	case KindWrite:
		return p.parseWrite()
	case KindPidentifier:
		if p.peekAt(1).Kind == KindLparen {
			return p.parseCall()
		}
		return p.parseAssign()
	default:
		p.errs.Add(util.StageParse, tok.Line, tok.Col, "unexpected token %s %q starting a command", tok.Kind, tok.Lexeme)
		p.advance()
		return Command{Kind: CmdInlinedProcedure}
	}
}

func (p *Parser) parseAssign() Command {
	id := p.parseIdentifier()
	cmd := Command{Kind: CmdAssign, Target: id, Line: id.Line, Col: id.Col}
	p.expect(KindWalrus)
	cmd.Expr = p.parseExpr()
	p.expect(KindSemicolon)
	return cmd
}

func (p *Parser) parseRead() Command {
	tok, _ := p.expect(KindRead)
	id := p.parseIdentifier()
	p.expect(KindSemicolon)
	return Command{Kind: CmdRead, ReadTarget: id, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) parseWrite() Command {
	tok, _ := p.expect(KindWrite)
	v := p.parseValue()
	p.expect(KindSemicolon)
	return Command{Kind: CmdWrite, WriteValue: v, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) parseIf() Command {
	tok, _ := p.expect(KindIf)
	cond := p.parseCondition()
	p.expect(KindThen)
	then := p.parseCommands()
	cmd := Command{Kind: CmdIf, Cond: cond, Then: then, Line: tok.Line, Col: tok.Col}
	if p.at(KindElse) {
		p.advance()
		cmd.Else = p.parseCommands()
		cmd.HasElse = true
	}
	p.expect(KindEndIf)
	return cmd
}

func (p *Parser) parseWhile() Command {
	tok, _ := p.expect(KindWhile)
	cond := p.parseCondition()
	p.expect(KindDo)
	body := p.parseCommands()
	p.expect(KindEndWhile)
	return Command{Kind: CmdWhile, Cond: cond, Then: body, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) parseRepeat() Command {
	tok, _ := p.expect(KindRepeat)
	body := p.parseCommands()
	p.expect(KindUntil)
	cond := p.parseCondition()
	p.expect(KindSemicolon)
	return Command{Kind: CmdRepeat, Cond: cond, Then: body, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) parseCall() Command {
	nameTok, _ := p.expect(KindPidentifier)
	cmd := Command{Kind: CmdCall, CallName: nameTok.Lexeme, Line: nameTok.Line, Col: nameTok.Col}
	p.expect(KindLparen)
	for !p.at(KindRparen) && !p.at(KindEOF) {
		argTok, ok := p.expect(KindPidentifier)
		if !ok {
			break
		}
		cmd.CallArgs = append(cmd.CallArgs, argTok.Lexeme)
		if p.at(KindComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(KindRparen)
	p.expect(KindSemicolon)
	return cmd
}

func (p *Parser) parseIdentifier() Identifier {
	nameTok, _ := p.expect(KindPidentifier)
	id := Identifier{Name: nameTok.Lexeme, Line: nameTok.Line, Col: nameTok.Col}
	if p.at(KindLbracket) {
		p.advance()
		if p.at(KindNum) {
			numTok := p.advance()
			id.Index = IndexLiteral
			id.IndexLit = parseIntLiteral(numTok.Lexeme)
		} else {
			idTok, _ := p.expect(KindPidentifier)
			id.Index = IndexIdent
			id.IndexIdent = idTok.Lexeme
		}
		p.expect(KindRbracket)
	}
	return id
}

func (p *Parser) parseValue() Value {
	tok := p.peek()
	if tok.Kind == KindNum {
		p.advance()
		return Value{Kind: ValueNum, Num: parseBigLiteral(tok.Lexeme), Line: tok.Line, Col: tok.Col}
	}
	id := p.parseIdentifier()
	return Value{Kind: ValueIdent, Ident: id, Line: id.Line, Col: id.Col}
}

func (p *Parser) parseExpr() Expr {
	lhs := p.parseValue()
	if !isBinOpStart(p.peek().Kind) {
		return Expr{Kind: ExprValue, Value: lhs}
	}
	op := p.parseBinOp()
	rhs := p.parseValue()
	return Expr{Kind: ExprBinary, Lhs: lhs, Op: op, Rhs: rhs}
}

func isBinOpStart(k Kind) bool {
	switch k {
	case KindPlus, KindMinus, KindStar, KindSlash, KindPercent:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBinOp() BinOp {
	tok := p.advance()
	switch tok.Kind {
	case KindPlus:
		return OpAdd
	case KindMinus:
		return OpSub
	case KindStar:
		return OpMul
	case KindSlash:
		return OpDiv
	case KindPercent:
		return OpMod
	default:
		p.errs.Add(util.StageParse, tok.Line, tok.Col, "expected arithmetic operator, found %s", tok.Kind)
		return OpAdd
	}
}

func (p *Parser) parseCondition() Condition {
	lhs := p.parseValue()
	op := p.parseRelOp()
	rhs := p.parseValue()
	return Condition{Lhs: lhs, Op: op, Rhs: rhs}
}

func (p *Parser) parseRelOp() RelOp {
	tok := p.advance()
	switch tok.Kind {
	case KindEquals:
		return RelEq
	case KindBangEquals:
		return RelNe
	case KindLess:
		return RelLt
	case KindLessEquals:
		return RelLe
	case KindGreater:
		return RelGt
	case KindGreaterEquals:
		return RelGe
	default:
		p.errs.Add(util.StageParse, tok.Line, tok.Col, "expected comparison operator, found %s", tok.Kind)
		return RelEq
	}
}

func parseIntLiteral(s string) int {
	n := 0
	for i1 := 0; i1 < len(s); i1++ {
		n = n*10 + int(s[i1]-'0')
	}
	return n
}

func parseBigLiteral(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}
