package frontend

import (
	"fmt"
	"math/big"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Program is the immutable root of the AST (spec.md section 3): zero or more Procedures and
// one main Context. Built once by Parse and consumed (never mutated) by every later stage.
type Program struct {
	Procedures []Procedure
	Main       Context
}

// Context is an ordered list of Declarations followed by an ordered list of Commands, shared
// by both Procedure bodies and the main block.
type Context struct {
	Declarations []Declaration
	Commands     []Command
}

// Declaration binds a name to either a scalar or a fixed-size array.
type Declaration struct {
	Name    string
	IsArray bool
	Size    int // Valid only if IsArray.
	Line    int
	Col     int
}

// Arg is a single formal parameter of a Procedure. Every Arg is callee-by-reference
// (spec.md section 3: "is_pointer is true for procedure parameters").
type Arg struct {
	Name    string
	IsArray bool
	Line    int
	Col     int
}

// Procedure is a named, callable Context with formal parameters.
type Procedure struct {
	Name string
	Args []Arg
	Body Context
	Line int
	Col  int
}

// IndexKind discriminates how an array Identifier is indexed.
type IndexKind int

// Index kinds.
const (
	IndexNone IndexKind = iota
	IndexLiteral
	IndexIdent
)

// Identifier is a variable reference, optionally indexed (spec.md section 3).
type Identifier struct {
	Name       string
	Index      IndexKind
	IndexLit   int
	IndexIdent string
	Line       int
	Col        int
}

// String renders the Identifier the way the source language spells it. Only Identifier, Value,
// BinOp and RelOp have String methods; there is no printer for a whole Program or Command.
func (id Identifier) String() string {
	switch id.Index {
	case IndexNone:
		return id.Name
	case IndexLiteral:
		return fmt.Sprintf("%s[%d]", id.Name, id.IndexLit)
	case IndexIdent:
		return fmt.Sprintf("%s[%s]", id.Name, id.IndexIdent)
	default:
		panic("frontend: unhandled index kind")
	}
}

// ValueKind discriminates a Value's two variants.
type ValueKind int

// Value kinds.
const (
	ValueNum ValueKind = iota
	ValueIdent
)

// Value is either a numeric literal or an Identifier reference.
type Value struct {
	Kind  ValueKind
	Num   *big.Int
	Ident Identifier
	Line  int
	Col   int
}

// String renders the Value as source text.
func (v Value) String() string {
	switch v.Kind {
	case ValueNum:
		return v.Num.String()
	case ValueIdent:
		return v.Ident.String()
	default:
		panic("frontend: unhandled value kind")
	}
}

// BinOp is a binary arithmetic operator.
type BinOp int

// Arithmetic operators.
const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// String renders the BinOp as source text.
func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		panic("frontend: unhandled binary operator")
	}
}

// ExprKind discriminates Expr's two variants.
type ExprKind int

// Expression kinds.
const (
	ExprValue ExprKind = iota
	ExprBinary
)

// Expr is an assignment's right-hand side: either a bare Value or a BinaryExpression.
type Expr struct {
	Kind  ExprKind
	Value Value // Valid if Kind == ExprValue.
	Lhs   Value // Valid if Kind == ExprBinary.
	Op    BinOp
	Rhs   Value
}

// RelOp is a comparison operator.
type RelOp int

// Comparison operators.
const (
	RelEq RelOp = iota
	RelNe
	RelLt
	RelLe
	RelGt
	RelGe
)

// String renders the RelOp as source text.
func (op RelOp) String() string {
	switch op {
	case RelEq:
		return "="
	case RelNe:
		return "!="
	case RelLt:
		return "<"
	case RelLe:
		return "<="
	case RelGt:
		return ">"
	case RelGe:
		return ">="
	default:
		panic("frontend: unhandled relational operator")
	}
}

// Condition is a single comparison between two Values.
type Condition struct {
	Lhs Value
	Op  RelOp
	Rhs Value
}

// CommandKind discriminates Command's closed set of variants (spec.md section 3).
type CommandKind int

// Command kinds.
const (
	CmdAssign CommandKind = iota
	CmdRead
	CmdWrite
	CmdIf
	CmdWhile
	CmdRepeat
	CmdCall
	CmdInlinedProcedure
)

// Command is a tagged union over every statement form the source language has. Only the
// fields relevant to Kind are populated; every consumer must switch exhaustively on Kind.
type Command struct {
	Kind CommandKind
	Line int
	Col  int

	// CmdAssign
	Target Identifier
	Expr   Expr

	// CmdRead
	ReadTarget Identifier

	// CmdWrite
	WriteValue Value

	// CmdIf / CmdWhile / CmdRepeat
	Cond    Condition
	Then    []Command // CmdIf: then-branch. CmdWhile/CmdRepeat: loop body.
	Else    []Command // CmdIf only; nil means no else branch.
	HasElse bool

	// CmdCall
	CallName string
	CallArgs []string

	// CmdInlinedProcedure
	Inlined []Command
}
