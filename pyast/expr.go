package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

func (b *builder) expr(n *sitter.Node) Expr {
	switch n.Type() {
	case "identifier":
		return &Name{ID: b.content(n)}
	case "attribute":
		a := &Attribute{Src: b.content(n)}
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			a.Attr = b.content(attr)
		}
		return a
	case "string":
		return b.stringLit(n)
	case "concatenated_string":
		return b.concatenated(n)
	case "integer":
		return &Constant{Kind: ConstInt, Src: b.content(n)}
	case "float":
		return &Constant{Kind: ConstFloat, Src: b.content(n)}
	case "true":
		return &Constant{Kind: ConstTrue, Src: b.content(n)}
	case "false":
		return &Constant{Kind: ConstFalse, Src: b.content(n)}
	case "none":
		return &Constant{Kind: ConstNone, Src: b.content(n)}
	case "ellipsis":
		return &Constant{Kind: ConstEllipsis, Src: b.content(n)}
	case "call":
		return b.call(n)
	case "tuple", "expression_list":
		return b.sequence(n, SeqTuple)
	case "list":
		return b.sequence(n, SeqList)
	case "set":
		return b.sequence(n, SeqSet)
	case "dictionary":
		return b.dict(n)
	case "parenthesized_expression":
		kids := namedChildren(n)
		if len(kids) != 1 {
			break
		}
		x := kids[0]
		return &Paren{
			Open:  b.text(n.StartByte(), x.StartByte()),
			X:     b.expr(x),
			Close: b.text(x.EndByte(), n.EndByte()),
		}
	}
	return &RawExpr{Src: b.content(n)}
}

func (b *builder) stringLit(n *sitter.Node) Expr {
	src := b.content(n)
	val, kind, ok := DecodeString(src)
	if !ok {
		return &RawExpr{Src: src}
	}
	return &Constant{Kind: kind, Src: src, Value: val}
}

func (b *builder) concatenated(n *sitter.Node) Expr {
	var sb strings.Builder
	kind := ConstString
	for i, c := range namedChildren(n) {
		val, k, ok := DecodeString(b.content(c))
		if !ok {
			return &RawExpr{Src: b.content(n)}
		}
		if i == 0 {
			kind = k
		}
		sb.WriteString(val)
	}
	return &Constant{Kind: kind, Src: b.content(n), Value: sb.String()}
}

func (b *builder) call(n *sitter.Node) Expr {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.Type() != "argument_list" {
		return &RawExpr{Src: b.content(n)}
	}
	c := &Call{
		Func: b.expr(fn),
		Gap:  b.text(fn.EndByte(), args.StartByte()),
		Open: b.text(args.StartByte(), args.StartByte()+1),
	}
	pos := args.StartByte() + 1
	for _, x := range namedChildren(args) {
		a := &Arg{Lead: b.text(pos, x.StartByte())}
		switch x.Type() {
		case "keyword_argument":
			name := x.ChildByFieldName("name")
			value := x.ChildByFieldName("value")
			if name == nil || value == nil {
				return &RawExpr{Src: b.content(n)}
			}
			a.Kind = ArgKeyword
			a.Name = b.content(name)
			a.Eq = b.text(name.EndByte(), value.StartByte())
			a.Value = b.expr(value)
		case "list_splat", "parenthesized_list_splat":
			a.Kind = ArgStarred
			a.Value = &RawExpr{Src: b.content(x)}
		case "dictionary_splat":
			a.Kind = ArgDoubleStar
			a.Value = &RawExpr{Src: b.content(x)}
		default:
			a.Kind = ArgPositional
			a.Value = b.expr(x)
		}
		c.Args = append(c.Args, a)
		pos = x.EndByte()
	}
	c.Close = b.text(pos, args.EndByte())
	return c
}

func (b *builder) sequence(n *sitter.Node, kind SeqKind) Expr {
	s := &Sequence{Kind: kind}
	pos := n.StartByte()
	for _, x := range namedChildren(n) {
		it := &Item{Lead: b.text(pos, x.StartByte())}
		if x.Type() == "list_splat" {
			it.Value = &RawExpr{Src: b.content(x)}
		} else {
			it.Value = b.expr(x)
		}
		s.Items = append(s.Items, it)
		pos = x.EndByte()
	}
	s.Close = b.text(pos, n.EndByte())
	return s
}

func (b *builder) dict(n *sitter.Node) Expr {
	d := &Dict{}
	pos := n.StartByte()
	for _, x := range namedChildren(n) {
		it := &Item{Lead: b.text(pos, x.StartByte())}
		key := x.ChildByFieldName("key")
		value := x.ChildByFieldName("value")
		if x.Type() == "pair" && key != nil && value != nil {
			it.Key = b.expr(key)
			it.Sep = b.text(key.EndByte(), value.StartByte())
			it.Value = b.expr(value)
		} else {
			it.Value = &RawExpr{Src: b.content(x)}
		}
		d.Items = append(d.Items, it)
		pos = x.EndByte()
	}
	d.Close = b.text(pos, n.EndByte())
	return d
}
