// Package transform wraps the human-facing string literals of Django
// declarations in the lazy gettext marker "_()".
//
// The entry point is Apply, which runs the declaration matcher over every
// class of a module that is not nested in another class, then makes sure the
// marker is imported.
package transform

import (
	"github.com/minios-linux/gettextify/pyast"
)

// Marker is the name gettext_lazy is imported as.
const Marker = "_"

// Stats summarizes one Apply run.
type Stats struct {
	Classes     int // classes matched by a declaration shape
	Wrapped     int // literal slots rewritten or synthesized
	ImportAdded bool
}

// Changed reports whether the module was modified.
func (s Stats) Changed() bool { return s.Wrapped > 0 || s.ImportAdded }

// Apply rewrites m in place.
func Apply(m *pyast.Module) Stats {
	r := &rewriter{}
	r.visit(m.Body)
	return Stats{
		Classes:     r.classes,
		Wrapped:     r.wrapped,
		ImportAdded: EnsureImport(m),
	}
}

// Wrap returns the call "_(c)".
func Wrap(c *pyast.Constant) *pyast.Call {
	return pyast.NewCall(Marker, c)
}

// WrapString returns the call `_("s")`.
func WrapString(s string) *pyast.Call {
	return Wrap(pyast.NewString(s))
}

type rewriter struct {
	classes int
	wrapped int
}

// visit applies the matcher to classes found in stmts and in the blocks of
// functions and compound statements, but never inside a class body.
func (r *rewriter) visit(stmts []pyast.Stmt) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *pyast.ClassDef:
			r.class(s)
		case *pyast.FunctionDef:
			r.visit(s.Body.Stmts)
		case *pyast.Compound:
			for _, b := range s.Blocks() {
				r.visit(b.Stmts)
			}
		}
	}
}

// wrapSlot replaces the literal held by *e (looking through parentheses)
// with its wrapped form. Slots already holding anything else are left alone,
// which keeps repeated runs from double-wrapping.
func (r *rewriter) wrapSlot(e *pyast.Expr) bool {
	slot := pyast.Slot(e)
	c, ok := (*slot).(*pyast.Constant)
	if !ok {
		return false
	}
	*slot = Wrap(c)
	r.wrapped++
	return true
}

func (r *rewriter) set(e *pyast.Expr, v pyast.Expr) {
	*pyast.Slot(e) = v
	r.wrapped++
}

func (r *rewriter) appendArg(c *pyast.Call, a *pyast.Arg) {
	c.Append(a)
	r.wrapped++
}

func (r *rewriter) insertKeyword(c *pyast.Call, a *pyast.Arg) {
	c.InsertKeyword(a)
	r.wrapped++
}

// wrapLast wraps the last element of a non-empty tuple when it is a literal.
func (r *rewriter) wrapLast(t *pyast.Sequence) {
	if len(t.Items) == 0 {
		return
	}
	r.wrapSlot(&t.Items[len(t.Items)-1].Value)
}

// wrapFirstArg wraps a literal first positional argument, or the first
// value of a dict passed as the first positional argument.
func (r *rewriter) wrapFirstArg(c *pyast.Call) {
	pos := c.Positional()
	if len(pos) == 0 || pos[0].Kind != pyast.ArgPositional {
		return
	}
	if d, ok := pyast.Unparen(pos[0].Value).(*pyast.Dict); ok {
		if len(d.Items) > 0 && d.Items[0].Key != nil {
			r.wrapSlot(&d.Items[0].Value)
		}
		return
	}
	r.wrapSlot(&pos[0].Value)
}

func (r *rewriter) wrapKeyword(c *pyast.Call, name string) {
	if kw := c.Keyword(name); kw != nil {
		r.wrapSlot(&kw.Value)
	}
}

func tupleOf(e pyast.Expr) (*pyast.Sequence, bool) {
	t, ok := pyast.Unparen(e).(*pyast.Sequence)
	if !ok || t.Kind != pyast.SeqTuple || len(t.Items) == 0 {
		return nil, false
	}
	return t, true
}
