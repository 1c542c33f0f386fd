package transform

import (
	"github.com/minios-linux/gettextify/pyast"
)

// raises rewrites the raise statements directly inside the body of a
// validation guard (the "if" that makes up a whole method).
func (r *rewriter) raises(cond *pyast.Compound) {
	blocks := cond.Blocks()
	if len(blocks) == 0 {
		return
	}
	for _, s := range blocks[0].Stmts {
		if rs, ok := s.(*pyast.Raise); ok {
			r.raise(rs)
		}
	}
}

func (r *rewriter) raise(rs *pyast.Raise) {
	switch exc := pyast.Unparen(rs.Exc).(type) {
	case *pyast.Sequence:
		for _, it := range exc.Items {
			if call, ok := pyast.Unparen(it.Value).(*pyast.Call); ok {
				r.errorDetail(call)
			}
		}
	case *pyast.Call:
		r.errorDetail(exc)
	}
}

// errorDetail wraps the message of an error constructor: its first
// positional argument when there is one, its message keyword otherwise.
func (r *rewriter) errorDetail(c *pyast.Call) {
	if len(c.Positional()) > 0 {
		r.wrapFirstArg(c)
		return
	}
	r.wrapKeyword(c, "message")
}
