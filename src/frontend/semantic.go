package frontend

import "ivc/src/util"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// symbolKind discriminates what a declared name stands for within one scope.
type symbolKind int

const (
	symScalar symbolKind = iota
	symArray
	symArrayRef // By-reference array parameter: size is unknown until call time.
)

type symbol struct {
	kind symbolKind
	size int
	line int
	col  int
}

// scope tracks declared names and initialization state for one Context (a Procedure body or
// the main block). It does not transform the AST (spec.md section 1: the semantic analyzer
// "reports errors/warnings, does not transform").
type scope struct {
	name    string
	symbols map[string]symbol
	init    map[string]bool
}

func newScope(name string) *scope {
	return &scope{name: name, symbols: map[string]symbol{}, init: map[string]bool{}}
}

// Analyzer performs the read-only checks of spec.md section 7: duplicate declarations,
// undeclared use, arity/kind of call arguments, out-of-bounds literal index, and
// use-before-initialization (a warning, not an error, per spec.md section 7).
type Analyzer struct {
	errs  *util.ErrorList
	procs map[string]Procedure
}

// NewAnalyzer returns an Analyzer that reports into errs.
func NewAnalyzer(errs *util.ErrorList) *Analyzer {
	return &Analyzer{errs: errs, procs: map[string]Procedure{}}
}

// Analyze walks Program prog and reports every diagnostic to the Analyzer's ErrorList.
func (a *Analyzer) Analyze(prog Program) {
	for _, p := range prog.Procedures {
		if _, dup := a.procs[p.Name]; dup {
			a.errs.Add(util.StageSemantic, p.Line, p.Col, "duplicate procedure declaration %q", p.Name)
			continue
		}
		a.procs[p.Name] = p
	}

	for _, p := range prog.Procedures {
		sc := newScope(p.Name)
		for _, arg := range p.Args {
			a.declare(sc, arg.Name, arg.IsArray, -1, arg.Line, arg.Col, true)
		}
		a.analyzeContext(sc, p.Body)
	}

	main := newScope("")
	a.analyzeContext(main, prog.Main)
}

func (a *Analyzer) declare(sc *scope, name string, isArray bool, size, line, col int, byRef bool) {
	if _, dup := sc.symbols[name]; dup {
		a.errs.Add(util.StageSemantic, line, col, "duplicate declaration of %q in %s", name, scopeLabel(sc))
		return
	}
	kind := symScalar
	if isArray {
		kind = symArray
		if byRef {
			kind = symArrayRef
		}
	}
	sc.symbols[name] = symbol{kind: kind, size: size, line: line, col: col}
	if byRef {
		// Reference parameters are considered initialized: the caller supplies the value.
		sc.init[name] = true
	}
}

func scopeLabel(sc *scope) string {
	if sc.name == "" {
		return "main"
	}
	return sc.name
}

func (a *Analyzer) analyzeContext(sc *scope, ctx Context) {
	for _, d := range ctx.Declarations {
		if d.IsArray && d.Size <= 0 {
			a.errs.Add(util.StageSemantic, d.Line, d.Col, "array %q declared with non-positive size", d.Name)
		}
		a.declare(sc, d.Name, d.IsArray, d.Size, d.Line, d.Col, false)
	}
	a.analyzeCommands(sc, ctx.Commands)
}

func (a *Analyzer) analyzeCommands(sc *scope, cmds []Command) {
	for _, c := range cmds {
		a.analyzeCommand(sc, c)
	}
}

// analyzeCommand exhaustively switches on Command.Kind (spec.md section 9: the set of
// variants is closed).
func (a *Analyzer) analyzeCommand(sc *scope, c Command) {
	switch c.Kind {
	case CmdAssign:
		a.checkIdentifierWrite(sc, c.Target)
		a.checkExpr(sc, c.Expr)
		sc.init[c.Target.Name] = true
	case CmdRead:
		a.checkIdentifierWrite(sc, c.ReadTarget)
		sc.init[c.ReadTarget.Name] = true
	case CmdWrite:
		a.checkValue(sc, c.WriteValue)
	case CmdIf:
		a.checkCondition(sc, c.Cond)
		a.analyzeCommands(sc, c.Then)
		if c.HasElse {
			a.analyzeCommands(sc, c.Else)
		}
	case CmdWhile:
		a.checkCondition(sc, c.Cond)
		a.analyzeCommands(sc, c.Then)
	case CmdRepeat:
		a.analyzeCommands(sc, c.Then)
		a.checkCondition(sc, c.Cond)
	case CmdCall:
		a.checkCall(sc, c)
	case CmdInlinedProcedure:
		a.analyzeCommands(sc, c.Inlined)
	default:
		panic("frontend: unhandled command kind in semantic analysis")
	}
}

func (a *Analyzer) checkCall(sc *scope, c Command) {
	proc, ok := a.procs[c.CallName]
	if !ok {
		a.errs.Add(util.StageSemantic, c.Line, c.Col, "call to undeclared procedure %q", c.CallName)
		return
	}
	if len(proc.Args) != len(c.CallArgs) {
		a.errs.Add(util.StageSemantic, c.Line, c.Col, "procedure %q expects %d argument(s), got %d",
			c.CallName, len(proc.Args), len(c.CallArgs))
		return
	}
	for i1, argName := range c.CallArgs {
		sym, ok := sc.symbols[argName]
		if !ok {
			a.errs.Add(util.StageSemantic, c.Line, c.Col, "undeclared argument %q in call to %q", argName, c.CallName)
			continue
		}
		wantArray := proc.Args[i1].IsArray
		gotArray := sym.kind != symScalar
		if wantArray != gotArray {
			if wantArray {
				a.errs.Add(util.StageSemantic, c.Line, c.Col, "argument %q to %q must be an array", argName, c.CallName)
			} else {
				a.errs.Add(util.StageSemantic, c.Line, c.Col, "argument %q to %q must be a scalar", argName, c.CallName)
			}
		}
		if !sc.init[argName] && !gotArray {
			a.errs.AddWarning(util.StageSemantic, c.Line, c.Col, "variable %q may be used before initialization", argName)
		}
	}
}

func (a *Analyzer) checkIdentifierWrite(sc *scope, id Identifier) {
	sym, ok := sc.symbols[id.Name]
	if !ok {
		a.errs.Add(util.StageSemantic, id.Line, id.Col, "assignment to undeclared variable %q", id.Name)
		return
	}
	switch id.Index {
	case IndexNone:
		if sym.kind != symScalar {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "array %q used without an index", id.Name)
		}
	case IndexLiteral:
		if sym.kind == symScalar {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "scalar %q indexed like an array", id.Name)
		} else if sym.kind == symArray && (id.IndexLit < 0 || id.IndexLit >= sym.size) {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "index %d out of bounds for array %q of size %d",
				id.IndexLit, id.Name, sym.size)
		}
	case IndexIdent:
		if sym.kind == symScalar {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "scalar %q indexed like an array", id.Name)
		}
		if _, ok := sc.symbols[id.IndexIdent]; !ok {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "undeclared index variable %q", id.IndexIdent)
		}
	}
}

func (a *Analyzer) checkValue(sc *scope, v Value) {
	if v.Kind == ValueNum {
		return
	}
	a.checkIdentifierRead(sc, v.Ident)
}

func (a *Analyzer) checkIdentifierRead(sc *scope, id Identifier) {
	sym, ok := sc.symbols[id.Name]
	if !ok {
		a.errs.Add(util.StageSemantic, id.Line, id.Col, "undeclared variable %q", id.Name)
		return
	}
	switch id.Index {
	case IndexNone:
		if sym.kind != symScalar {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "array %q used without an index", id.Name)
		} else if !sc.init[id.Name] {
			a.errs.AddWarning(util.StageSemantic, id.Line, id.Col, "variable %q may be used before initialization", id.Name)
		}
	case IndexLiteral:
		if sym.kind == symScalar {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "scalar %q indexed like an array", id.Name)
		} else if sym.kind == symArray && (id.IndexLit < 0 || id.IndexLit >= sym.size) {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "index %d out of bounds for array %q of size %d",
				id.IndexLit, id.Name, sym.size)
		}
	case IndexIdent:
		if sym.kind == symScalar {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "scalar %q indexed like an array", id.Name)
		}
		if _, ok := sc.symbols[id.IndexIdent]; !ok {
			a.errs.Add(util.StageSemantic, id.Line, id.Col, "undeclared index variable %q", id.IndexIdent)
		}
	}
}

func (a *Analyzer) checkExpr(sc *scope, e Expr) {
	switch e.Kind {
	case ExprValue:
		a.checkValue(sc, e.Value)
	case ExprBinary:
		a.checkValue(sc, e.Lhs)
		a.checkValue(sc, e.Rhs)
	default:
		panic("frontend: unhandled expression kind in semantic analysis")
	}
}

func (a *Analyzer) checkCondition(sc *scope, c Condition) {
	a.checkValue(sc, c.Lhs)
	a.checkValue(sc, c.Rhs)
}
