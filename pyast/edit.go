package pyast

import (
	"slices"
	"strings"
)

// NewString returns a double-quoted string literal holding s.
func NewString(s string) *Constant {
	return &Constant{Kind: ConstString, Src: Quote(s), Value: s}
}

// NewCall returns "fn(args...)" with single-space separators.
func NewCall(fn string, args ...Expr) *Call {
	c := &Call{Func: &Name{ID: fn}, Open: "(", Close: ")"}
	for _, v := range args {
		c.Insert(len(c.Args), &Arg{Kind: ArgPositional, Value: v})
	}
	return c
}

// NewKeyword returns a "name=value" argument.
func NewKeyword(name string, value Expr) *Arg {
	return &Arg{Kind: ArgKeyword, Name: name, Eq: "=", Value: value}
}

// Insert places a at index i of the argument list (clamped to the end).
// The new entry borrows the separator style of its neighbours, so calls laid
// out one argument per line stay that way.
func (c *Call) Insert(i int, a *Arg) {
	switch {
	case len(c.Args) == 0:
		i = 0
		a.Lead = ""
	case i >= len(c.Args):
		i = len(c.Args)
		a.Lead = "," + indentOf(c.Args[i-1].Lead)
	default:
		old := c.Args[i]
		a.Lead = old.Lead
		if i == 0 {
			old.Lead = "," + indentOf(old.Lead)
		}
	}
	c.Args = slices.Insert(c.Args, i, a)
}

// Append adds a at the end of the argument list.
func (c *Call) Append(a *Arg) { c.Insert(len(c.Args), a) }

// InsertKeyword places a before the first keyword entry, or at the end when
// there is none.
func (c *Call) InsertKeyword(a *Arg) {
	i := slices.IndexFunc(c.Args, func(x *Arg) bool {
		return x.Kind == ArgKeyword || x.Kind == ArgDoubleStar
	})
	if i < 0 {
		i = len(c.Args)
	}
	c.Insert(i, a)
}

// indentOf returns the whitespace that starts the line of an argument, or a
// single space for arguments on the same line as their predecessor.
func indentOf(lead string) string {
	if i := strings.LastIndexByte(lead, '\n'); i >= 0 {
		return lead[i:]
	}
	return " "
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}

// Slot returns the innermost expression slot of *e, looking through
// parentheses, so a rewrite lands inside "( ... )" instead of replacing it.
func Slot(e *Expr) *Expr {
	for {
		p, ok := (*e).(*Paren)
		if !ok {
			return e
		}
		e = &p.X
	}
}

// InsertStmt inserts s into body at index i.
func InsertStmt(body []Stmt, i int, s Stmt) []Stmt {
	return slices.Insert(body, i, s)
}
