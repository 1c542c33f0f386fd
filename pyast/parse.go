package pyast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrSyntax is returned (wrapped in a *SyntaxError) for source that does not
// parse as Python.
var ErrSyntax = errors.New("invalid python syntax")

// SyntaxError locates the first parse error. Line and Column are 1-based.
type SyntaxError struct {
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%v at line %d, column %d", ErrSyntax, e.Line, e.Column)
	}
	return fmt.Sprintf("%v at line %d, column %d near %q", ErrSyntax, e.Line, e.Column, e.Near)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Parser converts Python source into a Module. A Parser is not safe for
// concurrent use; create one per goroutine.
type Parser struct {
	p *sitter.Parser
}

// NewParser returns a parser for Python 3 source.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{p: p}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() { p.p.Close() }

// Parse is a convenience wrapper that parses src with a fresh parser.
func Parse(ctx context.Context, src []byte) (*Module, error) {
	p := NewParser()
	defer p.Close()
	return p.Parse(ctx, src)
}

// Parse builds the tree for src.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Module, error) {
	tree, err := p.p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing python: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, src)
	}

	b := &builder{src: src}
	m := &Module{}
	pos := 0
	m.Body, pos = b.stmts(root, pos)
	m.Trail = string(src[pos:])
	return m, nil
}

func syntaxError(n *sitter.Node, src []byte) error {
	bad := firstError(n)
	if bad == nil {
		bad = n
	}
	pt := bad.StartPoint()
	near := bad.Content(src)
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = near[:i]
	}
	if len(near) > 40 {
		near = near[:40]
	}
	return &SyntaxError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Near: near}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.HasError() || c.IsMissing() {
			if bad := firstError(c); bad != nil {
				return bad
			}
		}
	}
	return nil
}

type builder struct {
	src []byte
}

func (b *builder) text(from, to uint32) string { return string(b.src[from:to]) }

func (b *builder) content(n *sitter.Node) string { return b.text(n.StartByte(), n.EndByte()) }

// namedChildren returns the named children of n, comments excluded. Comments
// end up in the surrounding trivia.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// stmts converts the statement children of a module or block. pos is the
// offset where the first statement's leading trivia starts; the returned
// offset is the end of the last statement.
func (b *builder) stmts(n *sitter.Node, pos int) ([]Stmt, int) {
	var out []Stmt
	for _, c := range namedChildren(n) {
		s := b.stmt(c)
		s.SetLeading(b.text(uint32(pos), c.StartByte()))
		out = append(out, s)
		pos = int(c.EndByte())
	}
	return out, pos
}

func (b *builder) block(n *sitter.Node) *Block {
	blk := &Block{}
	var end int
	blk.Stmts, end = b.stmts(n, int(n.StartByte()))
	blk.Trail = b.text(uint32(end), n.EndByte())
	return blk
}

func (b *builder) stmt(n *sitter.Node) Stmt {
	switch n.Type() {
	case "class_definition":
		return b.classDef(n, nil, n.StartByte())
	case "function_definition":
		return b.funcDef(n, nil, n.StartByte())
	case "decorated_definition":
		return b.decorated(n)
	case "expression_statement":
		return b.exprStmt(n)
	case "raise_statement":
		return b.raise(n)
	case "import_statement", "import_from_statement", "future_import_statement":
		return b.importStmt(n)
	case "if_statement", "for_statement", "while_statement", "try_statement",
		"with_statement", "match_statement":
		return b.compound(n)
	}
	return &Raw{Kind: n.Type(), Src: b.content(n)}
}

func (b *builder) decorated(n *sitter.Node) Stmt {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return &Raw{Kind: n.Type(), Src: b.content(n)}
	}
	var decs []*Decorator
	pos := n.StartByte()
	for _, c := range namedChildren(n) {
		if c.Type() != "decorator" {
			continue
		}
		decs = append(decs, b.decorator(c, pos))
		pos = c.EndByte()
	}
	switch def.Type() {
	case "class_definition":
		cd := b.classDef(def, decs, pos)
		cd.Tail += b.text(def.EndByte(), n.EndByte())
		return cd
	case "function_definition":
		fd := b.funcDef(def, decs, pos)
		fd.Tail += b.text(def.EndByte(), n.EndByte())
		return fd
	}
	return &Raw{Kind: n.Type(), Src: b.content(n)}
}

func (b *builder) decorator(n *sitter.Node, pos uint32) *Decorator {
	d := &Decorator{Lead: b.text(pos, n.StartByte())}
	kids := namedChildren(n)
	if len(kids) == 0 {
		d.Pre = b.content(n)
		d.Expr = &RawExpr{}
		return d
	}
	x := kids[0]
	d.Pre = b.text(n.StartByte(), x.StartByte())
	d.Expr = b.expr(x)
	d.Post = b.text(x.EndByte(), n.EndByte())
	return d
}

func (b *builder) classDef(n *sitter.Node, decs []*Decorator, headerStart uint32) *ClassDef {
	cd := &ClassDef{Decorators: decs}
	if name := n.ChildByFieldName("name"); name != nil {
		cd.Name = b.content(name)
	}
	if sup := n.ChildByFieldName("superclasses"); sup != nil {
		for _, c := range namedChildren(sup) {
			if c.Type() == "keyword_argument" || c.Type() == "dictionary_splat" {
				continue
			}
			cd.Bases = append(cd.Bases, b.expr(c))
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		cd.Header = b.text(headerStart, n.EndByte())
		cd.Body = &Block{}
		return cd
	}
	cd.Header = b.text(headerStart, body.StartByte())
	cd.Body = b.block(body)
	cd.Tail = b.text(body.EndByte(), n.EndByte())
	return cd
}

func (b *builder) funcDef(n *sitter.Node, decs []*Decorator, headerStart uint32) *FunctionDef {
	fd := &FunctionDef{Decorators: decs}
	if name := n.ChildByFieldName("name"); name != nil {
		fd.Name = b.content(name)
	}
	if n.ChildCount() > 0 && n.Child(0).Type() == "async" {
		fd.Async = true
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		fd.Header = b.text(headerStart, n.EndByte())
		fd.Body = &Block{}
		return fd
	}
	fd.Header = b.text(headerStart, body.StartByte())
	fd.Body = b.block(body)
	fd.Tail = b.text(body.EndByte(), n.EndByte())
	return fd
}

func (b *builder) compound(n *sitter.Node) Stmt {
	c := &Compound{Kind: n.Type()}
	pos := b.parts(n, n.StartByte(), &c.Parts)
	if tail := b.text(pos, n.EndByte()); tail != "" {
		c.Parts = append(c.Parts, Part{Text: tail})
	}
	return c
}

// parts splits n into header text and blocks, descending into clauses
// (elif, else, except, finally, case) that carry their own blocks.
func (b *builder) parts(n *sitter.Node, pos uint32, out *[]Part) uint32 {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "block":
			if t := b.text(pos, c.StartByte()); t != "" {
				*out = append(*out, Part{Text: t})
			}
			*out = append(*out, Part{Block: b.block(c)})
			pos = c.EndByte()
		case strings.HasSuffix(c.Type(), "_clause"):
			pos = b.parts(c, pos, out)
		}
	}
	return pos
}

func (b *builder) exprStmt(n *sitter.Node) Stmt {
	kids := namedChildren(n)
	if len(kids) == 1 {
		x := kids[0]
		switch x.Type() {
		case "assignment":
			if a := b.assign(n, x); a != nil {
				return a
			}
		case "string", "concatenated_string":
			return &Raw{Kind: KindDocstring, Src: b.content(n)}
		}
	}
	return &Raw{Kind: n.Type(), Src: b.content(n)}
}

func (b *builder) assign(stmt, n *sitter.Node) *Assign {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return nil
	}
	if n.ChildByFieldName("type") != nil || right.Type() == "assignment" {
		return nil
	}
	return &Assign{
		Pre:    b.text(stmt.StartByte(), left.StartByte()),
		Target: b.content(left),
		Mid:    b.text(left.EndByte(), right.StartByte()),
		Value:  b.expr(right),
		Post:   b.text(right.EndByte(), stmt.EndByte()),
	}
}

func (b *builder) raise(n *sitter.Node) Stmt {
	kids := namedChildren(n)
	if len(kids) == 0 {
		return &Raw{Kind: n.Type(), Src: b.content(n)}
	}
	x := kids[0]
	return &Raise{
		Pre:  b.text(n.StartByte(), x.StartByte()),
		Exc:  b.expr(x),
		Post: b.text(x.EndByte(), n.EndByte()),
	}
}

func (b *builder) importStmt(n *sitter.Node) Stmt {
	imp := &Import{Src: b.content(n), From: n.Type() != "import_statement"}
	if n.Type() == "future_import_statement" {
		imp.Module = "__future__"
	} else if mod := n.ChildByFieldName("module_name"); mod != nil {
		imp.Module = b.content(mod)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "name" {
			continue
		}
		imp.Names = append(imp.Names, b.alias(n.Child(i)))
	}
	return imp
}

func (b *builder) alias(n *sitter.Node) Alias {
	if n.Type() != "aliased_import" {
		return Alias{Name: b.content(n)}
	}
	a := Alias{}
	if name := n.ChildByFieldName("name"); name != nil {
		a.Name = b.content(name)
	}
	if as := n.ChildByFieldName("alias"); as != nil {
		a.AsName = b.content(as)
	}
	return a
}
