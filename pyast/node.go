// Package pyast is a small, layout-preserving syntax tree for Python source.
//
// The tree only models the shapes the Django rewrite rules look at (classes,
// functions, assignments, raises, imports, calls, literals and collections).
// Everything else is kept as raw source. Every node remembers the exact text
// between its children, so printing an untouched tree reproduces the input
// byte for byte, and a rewritten tree keeps its layout around the rewrite.
package pyast

// Node is implemented by every statement and expression variant.
type Node interface {
	node()
}

// Stmt is a statement variant. The leading trivia of a statement is the
// source text between the end of the previous sibling and its first token.
type Stmt interface {
	Node
	Leading() string
	SetLeading(string)
}

// Expr is an expression variant.
type Expr interface {
	Node
	expr()
}

// Trivia carries the text preceding a statement: whitespace, newlines,
// comments and separators such as ";".
type Trivia struct {
	Lead string
}

func (t *Trivia) Leading() string     { return t.Lead }
func (t *Trivia) SetLeading(s string) { t.Lead = s }

// ---- Statements ----

// Module is a parsed source file.
type Module struct {
	Body  []Stmt
	Trail string
}

// Block is an indented suite of statements.
type Block struct {
	Stmts []Stmt
	Trail string
}

// Part is one segment of a compound statement: either literal header text
// or a nested block.
type Part struct {
	Text  string
	Block *Block
}

// Decorator is a single "@expr" line above a definition.
type Decorator struct {
	Lead string
	Pre  string
	Expr Expr
	Post string
}

// ClassDef is a class definition, including its decorators.
type ClassDef struct {
	Trivia
	Decorators []*Decorator
	Name       string
	Bases      []Expr
	Header     string
	Body       *Block
	Tail       string
}

// FunctionDef is a function or method definition, including its decorators.
type FunctionDef struct {
	Trivia
	Decorators []*Decorator
	Name       string
	Async      bool
	Header     string
	Body       *Block
	Tail       string
}

// Compound is any other statement that owns blocks (if, for, while, try,
// with, match). Kind is the grammar node type, e.g. "if_statement".
type Compound struct {
	Trivia
	Kind  string
	Parts []Part
}

// Assign is a single-target assignment "name = value". Chained, annotated
// and augmented assignments are kept as Raw.
type Assign struct {
	Trivia
	Pre    string
	Target string
	Mid    string
	Value  Expr
	Post   string
}

// Raise is "raise <exc>" with an optional "from" clause kept in Post.
type Raise struct {
	Trivia
	Pre  string
	Exc  Expr
	Post string
}

// Alias is one imported name.
type Alias struct {
	Name   string
	AsName string
}

// Import is an "import" or "from ... import" statement. Imports are never
// rewritten in place, Src is printed verbatim.
type Import struct {
	Trivia
	Src    string
	From   bool
	Module string
	Names  []Alias
}

// Raw is any statement the rewrite rules never look into.
type Raw struct {
	Trivia
	Kind string
	Src  string
}

// ---- Expressions ----

// Name is a bare identifier.
type Name struct {
	ID string
}

// Attribute is "value.attr". The object part is kept as source.
type Attribute struct {
	Src  string
	Attr string
}

// ConstKind tells which literal a Constant holds.
type ConstKind int

const (
	ConstString ConstKind = iota
	ConstBytes
	ConstInt
	ConstFloat
	ConstTrue
	ConstFalse
	ConstNone
	ConstEllipsis
)

// Constant is a literal. Src is the literal as written (implicitly
// concatenated strings included); Value holds the decoded text for string
// and bytes literals.
type Constant struct {
	Kind  ConstKind
	Src   string
	Value string
}

// ArgKind distinguishes the entries of a call argument list.
type ArgKind int

const (
	ArgPositional ArgKind = iota
	ArgStarred
	ArgKeyword
	ArgDoubleStar
)

// Arg is one entry of a call argument list. Lead is the text between the
// previous entry (or the opening parenthesis) and this one, commas included.
type Arg struct {
	Lead  string
	Kind  ArgKind
	Name  string
	Eq    string
	Value Expr
}

// Call is "func(args)". Args keeps positional and keyword entries in source
// order.
type Call struct {
	Func  Expr
	Gap   string
	Open  string
	Args  []*Arg
	Close string
}

// SeqKind tells the bracket kind of a Sequence.
type SeqKind int

const (
	SeqTuple SeqKind = iota
	SeqList
	SeqSet
)

// Item is an element of a Sequence or Dict.
type Item struct {
	Lead  string
	Key   Expr
	Sep   string
	Value Expr
}

// Sequence is a tuple, list or set display. The opening bracket, when
// present, is part of the first item's Lead.
type Sequence struct {
	Kind  SeqKind
	Items []*Item
	Close string
}

// Dict is a dictionary display. A "**mapping" entry has a nil Key.
type Dict struct {
	Items []*Item
	Close string
}

// Paren is a parenthesized expression.
type Paren struct {
	Open  string
	X     Expr
	Close string
}

// RawExpr is any expression the rewrite rules never look into.
type RawExpr struct {
	Src string
}

func (*Module) node()      {}
func (*Block) node()       {}
func (*ClassDef) node()    {}
func (*FunctionDef) node() {}
func (*Compound) node()    {}
func (*Assign) node()      {}
func (*Raise) node()       {}
func (*Import) node()      {}
func (*Raw) node()         {}
func (*Name) node()        {}
func (*Attribute) node()   {}
func (*Constant) node()    {}
func (*Call) node()        {}
func (*Sequence) node()    {}
func (*Dict) node()        {}
func (*Paren) node()       {}
func (*RawExpr) node()     {}

func (*Name) expr()      {}
func (*Attribute) expr() {}
func (*Constant) expr()  {}
func (*Call) expr()      {}
func (*Sequence) expr()  {}
func (*Dict) expr()      {}
func (*Paren) expr()     {}
func (*RawExpr) expr()   {}

// Blocks returns the blocks of a compound statement in source order.
func (c *Compound) Blocks() []*Block {
	var out []*Block
	for _, p := range c.Parts {
		if p.Block != nil {
			out = append(out, p.Block)
		}
	}
	return out
}

// IsDocstring reports whether the statement is a bare string expression.
func (r *Raw) IsDocstring() bool { return r.Kind == KindDocstring }

// KindDocstring is the Raw kind of a bare string expression statement.
const KindDocstring = "docstring"

// Positional returns the positional and starred entries in source order.
func (c *Call) Positional() []*Arg {
	var out []*Arg
	for _, a := range c.Args {
		if a.Kind == ArgPositional || a.Kind == ArgStarred {
			out = append(out, a)
		}
	}
	return out
}

// Keywords returns the keyword and "**" entries in source order.
func (c *Call) Keywords() []*Arg {
	var out []*Arg
	for _, a := range c.Args {
		if a.Kind == ArgKeyword || a.Kind == ArgDoubleStar {
			out = append(out, a)
		}
	}
	return out
}

// Keyword returns the keyword argument called name, or nil.
func (c *Call) Keyword(name string) *Arg {
	for _, a := range c.Args {
		if a.Kind == ArgKeyword && a.Name == name {
			return a
		}
	}
	return nil
}

// FuncName returns the called name: the identifier for a Name callee, the
// attribute for an Attribute callee, "" otherwise.
func (c *Call) FuncName() string {
	switch f := c.Func.(type) {
	case *Name:
		return f.ID
	case *Attribute:
		return f.Attr
	}
	return ""
}
