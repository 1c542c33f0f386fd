package transform

import (
	"strings"

	"github.com/minios-linux/gettextify/pyast"
)

// ImportModule and ImportName locate the marker function.
const (
	ImportModule = "django.utils.translation"
	ImportName   = "gettext_lazy"
)

// MarkerImport is the statement EnsureImport adds.
const MarkerImport = "from " + ImportModule + " import " + ImportName + " as " + Marker

// HasMarkerImport reports whether a top-level from-import already binds the
// marker name.
func HasMarkerImport(m *pyast.Module) bool {
	for _, s := range m.Body {
		imp, ok := s.(*pyast.Import)
		if !ok || !imp.From {
			continue
		}
		for _, a := range imp.Names {
			if bound(a) == Marker {
				return true
			}
		}
	}
	return false
}

func bound(a pyast.Alias) string {
	if a.AsName != "" {
		return a.AsName
	}
	return a.Name
}

// EnsureImport adds the marker import right after the last top-level
// import. Without imports it goes after the module docstring, or first.
// It reports whether the module changed.
func EnsureImport(m *pyast.Module) bool {
	if HasMarkerImport(m) {
		return false
	}
	imp := &pyast.Import{
		Src:    MarkerImport,
		From:   true,
		Module: ImportModule,
		Names:  []pyast.Alias{{Name: ImportName, AsName: Marker}},
	}

	after := -1
	for i, s := range m.Body {
		if _, ok := s.(*pyast.Import); ok {
			after = i
		}
	}
	if after < 0 && len(m.Body) > 0 {
		if raw, ok := m.Body[0].(*pyast.Raw); ok && raw.IsDocstring() {
			after = 0
		}
	}

	if after < 0 {
		insertFirst(m, imp)
		return true
	}
	insertAfter(m, after, imp)
	return true
}

func insertFirst(m *pyast.Module, imp *pyast.Import) {
	if len(m.Body) == 0 {
		imp.Lead = m.Trail
		if imp.Lead != "" && !strings.HasSuffix(imp.Lead, "\n") {
			imp.Lead += "\n"
		}
		m.Body = []pyast.Stmt{imp}
		m.Trail = "\n"
		return
	}
	first := m.Body[0]
	imp.Lead = first.Leading()
	switch first.(type) {
	case *pyast.ClassDef, *pyast.FunctionDef:
		first.SetLeading("\n\n\n")
	default:
		first.SetLeading("\n")
	}
	m.Body = pyast.InsertStmt(m.Body, 0, imp)
}

// insertAfter places imp on the line after m.Body[i]. A comment trailing
// that statement on the same line stays with it.
func insertAfter(m *pyast.Module, i int, imp *pyast.Import) {
	next := &m.Trail
	var nextStmt pyast.Stmt
	if i+1 < len(m.Body) {
		nextStmt = m.Body[i+1]
		lead := nextStmt.Leading()
		next = &lead
	}

	nl := strings.IndexByte(*next, '\n')
	switch {
	case nl < 0 && nextStmt == nil:
		imp.Lead = m.Trail + "\n"
		m.Trail = "\n"
	case nl < 0:
		imp.Lead = "\n"
	default:
		imp.Lead = (*next)[:nl] + "\n"
		*next = (*next)[nl:]
	}
	if nextStmt != nil {
		nextStmt.SetLeading(*next)
	}
	m.Body = pyast.InsertStmt(m.Body, i+1, imp)
}
