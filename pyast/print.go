package pyast

import (
	"fmt"
	"strings"
)

// Print renders the module back to source.
func Print(m *Module) string {
	var sb strings.Builder
	p := printer{w: &sb}
	p.stmts(m.Body)
	sb.WriteString(m.Trail)
	return sb.String()
}

// PrintExpr renders a single expression.
func PrintExpr(e Expr) string {
	var sb strings.Builder
	p := printer{w: &sb}
	p.expr(e)
	return sb.String()
}

type printer struct {
	w *strings.Builder
}

func (p printer) str(s string) { p.w.WriteString(s) }

func (p printer) stmts(list []Stmt) {
	for _, s := range list {
		p.str(s.Leading())
		p.stmt(s)
	}
}

func (p printer) block(b *Block) {
	p.stmts(b.Stmts)
	p.str(b.Trail)
}

func (p printer) decorators(list []*Decorator) {
	for _, d := range list {
		p.str(d.Lead)
		p.str(d.Pre)
		p.expr(d.Expr)
		p.str(d.Post)
	}
}

func (p printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *ClassDef:
		p.decorators(s.Decorators)
		p.str(s.Header)
		p.block(s.Body)
		p.str(s.Tail)
	case *FunctionDef:
		p.decorators(s.Decorators)
		p.str(s.Header)
		p.block(s.Body)
		p.str(s.Tail)
	case *Compound:
		for _, part := range s.Parts {
			if part.Block != nil {
				p.block(part.Block)
				continue
			}
			p.str(part.Text)
		}
	case *Assign:
		p.str(s.Pre)
		p.str(s.Target)
		p.str(s.Mid)
		p.expr(s.Value)
		p.str(s.Post)
	case *Raise:
		p.str(s.Pre)
		p.expr(s.Exc)
		p.str(s.Post)
	case *Import:
		p.str(s.Src)
	case *Raw:
		p.str(s.Src)
	default:
		panic(fmt.Sprintf("pyast: unexpected statement %T", s))
	}
}

func (p printer) expr(e Expr) {
	switch e := e.(type) {
	case *Name:
		p.str(e.ID)
	case *Attribute:
		p.str(e.Src)
	case *Constant:
		p.str(e.Src)
	case *Call:
		p.expr(e.Func)
		p.str(e.Gap)
		p.str(e.Open)
		for _, a := range e.Args {
			p.str(a.Lead)
			if a.Kind == ArgKeyword {
				p.str(a.Name)
				p.str(a.Eq)
			}
			p.expr(a.Value)
		}
		p.str(e.Close)
	case *Sequence:
		p.items(e.Items)
		p.str(e.Close)
	case *Dict:
		p.items(e.Items)
		p.str(e.Close)
	case *Paren:
		p.str(e.Open)
		p.expr(e.X)
		p.str(e.Close)
	case *RawExpr:
		p.str(e.Src)
	default:
		panic(fmt.Sprintf("pyast: unexpected expression %T", e))
	}
}

func (p printer) items(list []*Item) {
	for _, it := range list {
		p.str(it.Lead)
		if it.Key != nil {
			p.expr(it.Key)
			p.str(it.Sep)
		}
		p.expr(it.Value)
	}
}
