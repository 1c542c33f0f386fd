package transform

import (
	"strings"

	"github.com/minios-linux/gettextify/pyast"
)

// decorator handles @admin.display(...) style decorators: a literal
// description is title-cased and wrapped, a missing one is derived from the
// method name.
func (r *rewriter) decorator(fd *pyast.FunctionDef, call *pyast.Call) {
	found := false
	for _, a := range call.Args {
		if a.Kind != pyast.ArgKeyword || a.Name != "description" {
			continue
		}
		found = true
		c, ok := pyast.Unparen(a.Value).(*pyast.Constant)
		if !ok {
			continue
		}
		if c.Kind == pyast.ConstString {
			r.set(&a.Value, WrapString(pyast.Title(c.Value)))
		} else {
			r.wrapSlot(&a.Value)
		}
	}
	if found {
		return
	}
	label := pyast.Title(strings.ReplaceAll(fd.Name, "_", " "))
	r.appendArg(call, pyast.NewKeyword("description", WrapString(label)))
}
