package transform

import (
	"github.com/minios-linux/gettextify/pyast"
)

// Shape is the declaration kind a class is recognized as.
type Shape int

const (
	ShapeNone    Shape = iota
	ShapeAdmin         // class X(admin.ModelAdmin)
	ShapeChoices       // class X(models.TextChoices)
	ShapePlain         // class X(Name, ...)
	ShapeModel         // class X(models.Model)
)

func (s Shape) String() string {
	switch s {
	case ShapeAdmin:
		return "admin"
	case ShapeChoices:
		return "choices"
	case ShapePlain:
		return "plain"
	case ShapeModel:
		return "model"
	}
	return "none"
}

// Classify returns the shape of cd. Order matters: the admin and choices
// checks run before the generic plain-name check.
func Classify(cd *pyast.ClassDef) Shape {
	attr := soleAttributeBase(cd)
	switch {
	case attr == "ModelAdmin":
		return ShapeAdmin
	case attr == "TextChoices":
		return ShapeChoices
	case len(cd.Bases) > 0 && isName(cd.Bases[0]):
		return ShapePlain
	case attr == "Model":
		return ShapeModel
	}
	return ShapeNone
}

// soleAttributeBase returns the attribute name of a class whose only base is
// written as "module.Name".
func soleAttributeBase(cd *pyast.ClassDef) string {
	if len(cd.Bases) != 1 {
		return ""
	}
	if a, ok := cd.Bases[0].(*pyast.Attribute); ok {
		return a.Attr
	}
	return ""
}

func isName(e pyast.Expr) bool {
	_, ok := e.(*pyast.Name)
	return ok
}

func (r *rewriter) class(cd *pyast.ClassDef) {
	shape := Classify(cd)
	if shape == ShapeNone {
		return
	}
	r.classes++

	switch shape {
	case ShapeAdmin:
		for _, s := range cd.Body.Stmts {
			if fd, call := decoratedMethod(s); call != nil {
				r.decorator(fd, call)
			}
		}
	case ShapeChoices:
		r.classBody(cd)
	case ShapePlain:
		for _, s := range cd.Body.Stmts {
			r.plainMember(s)
		}
	case ShapeModel:
		for _, s := range cd.Body.Stmts {
			if a, ok := s.(*pyast.Assign); ok {
				r.assign(a)
			}
		}
	}
}

func (r *rewriter) plainMember(s pyast.Stmt) {
	switch s := s.(type) {
	case *pyast.ClassDef:
		r.classBody(s)
	case *pyast.Assign:
		r.assign(s)
	case *pyast.FunctionDef:
		if s.Async {
			return
		}
		if cond := soleIf(s); cond != nil {
			r.raises(cond)
			return
		}
		if fd, call := decoratedMethod(s); call != nil {
			r.decorator(fd, call)
		}
	}
}

// decoratedMethod matches a synchronous method with exactly one decorator
// written as a call with keyword arguments.
func decoratedMethod(s pyast.Stmt) (*pyast.FunctionDef, *pyast.Call) {
	fd, ok := s.(*pyast.FunctionDef)
	if !ok || fd.Async || len(fd.Decorators) != 1 {
		return nil, nil
	}
	call, ok := fd.Decorators[0].Expr.(*pyast.Call)
	if !ok || len(call.Keywords()) == 0 {
		return nil, nil
	}
	return fd, call
}

// soleIf returns the if statement that makes up the whole body of fd.
func soleIf(fd *pyast.FunctionDef) *pyast.Compound {
	if len(fd.Body.Stmts) != 1 {
		return nil
	}
	c, ok := fd.Body.Stmts[0].(*pyast.Compound)
	if !ok || c.Kind != "if_statement" {
		return nil
	}
	return c
}
