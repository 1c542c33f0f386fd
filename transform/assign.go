package transform

import (
	"strings"

	"github.com/minios-linux/gettextify/pyast"
)

// relationFields are the field constructors that take the related model as
// their first positional argument, so the label has to go in verbose_name.
var relationFields = []string{"ForeignKey", "ManyToManyField", "OneToOneField"}

const (
	managerName  = "objects"
	abstractName = "abstract"
	metaName     = "Meta"
)

// isFieldRef reports whether call gets the verbose_name-only treatment:
// relation fields, and any constructor called through a bare name.
func isFieldRef(call *pyast.Call) bool {
	switch f := call.Func.(type) {
	case *pyast.Name:
		return true
	case *pyast.Attribute:
		for _, suffix := range relationFields {
			if strings.HasSuffix(f.Attr, suffix) {
				return true
			}
		}
	}
	return false
}

func (r *rewriter) assign(a *pyast.Assign) {
	if a.Target == managerName {
		return
	}
	switch v := pyast.Unparen(a.Value).(type) {
	case *pyast.Call:
		if isFieldRef(v) {
			r.relation(a.Target, v)
			return
		}
		r.field(a.Target, v)
	case *pyast.Sequence:
		if t, ok := tupleOf(v); ok {
			r.wrapLast(t)
		}
	}
}

// relation wraps or synthesizes verbose_name, placing a new one first among
// the keywords.
func (r *rewriter) relation(target string, call *pyast.Call) {
	if kw := call.Keyword("verbose_name"); kw != nil {
		r.wrapSlot(&kw.Value)
		return
	}
	r.insertKeyword(call, pyast.NewKeyword("verbose_name", WrapString(pyast.Title(target))))
}

func (r *rewriter) field(target string, call *pyast.Call) {
	if len(call.Args) == 0 {
		r.appendArg(call, &pyast.Arg{Kind: pyast.ArgPositional, Value: WrapString(pyast.Title(target))})
		return
	}
	r.wrapFirstArg(call)

	if len(call.Keywords()) == 0 {
		return
	}
	r.wrapKeyword(call, "verbose_name")
	r.wrapKeyword(call, "help_text")
	if len(call.Positional()) == 0 && call.Keyword("verbose_name") == nil {
		r.appendArg(call, pyast.NewKeyword("verbose_name", WrapString(pyast.Title(target))))
	}
}

// classBody handles TextChoices members and classes nested in plain
// classes. Inside Meta only verbose_* options are touched and tuples are
// left alone.
func (r *rewriter) classBody(cd *pyast.ClassDef) {
	meta := cd.Name == metaName
	for _, s := range cd.Body.Stmts {
		a, ok := s.(*pyast.Assign)
		if !ok || a.Target == abstractName || a.Target == managerName {
			continue
		}
		if meta && !strings.HasPrefix(a.Target, "verbose") {
			continue
		}
		if r.wrapSlot(&a.Value) || meta {
			continue
		}
		if t, ok := tupleOf(a.Value); ok {
			r.wrapLast(t)
		}
	}
}
