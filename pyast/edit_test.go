package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstCall(t *testing.T, src string) (*Module, *Call) {
	t.Helper()
	m := mustParse(t, src)
	a, ok := m.Body[0].(*Assign)
	require.True(t, ok)
	c, ok := a.Value.(*Call)
	require.True(t, ok)
	return m, c
}

func TestCallAppend(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "x = f()\n", "x = f(k=v)\n"},
		{"inline", "x = f(a, b=1)\n", "x = f(a, b=1, k=v)\n"},
		{
			"one per line",
			"x = f(\n    a,\n    b=1\n)\n",
			"x = f(\n    a,\n    b=1,\n    k=v\n)\n",
		},
		{
			"trailing comma",
			"x = f(\n    b=1,\n)\n",
			"x = f(\n    b=1,\n    k=v,\n)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, c := firstCall(t, tt.src)
			c.Append(NewKeyword("k", &Name{ID: "v"}))
			assert.Equal(t, tt.want, Print(m))
		})
	}
}

func TestCallInsertKeyword(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no args", "x = f()\n", "x = f(k=v)\n"},
		{"before first keyword", "x = f(a, b=1)\n", "x = f(a, k=v, b=1)\n"},
		{"only keywords", "x = f(b=1)\n", "x = f(k=v, b=1)\n"},
		{"positional only", "x = f(a)\n", "x = f(a, k=v)\n"},
		{
			"one per line",
			"x = f(\n    b=1,\n)\n",
			"x = f(\n    k=v,\n    b=1,\n)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, c := firstCall(t, tt.src)
			c.InsertKeyword(NewKeyword("k", &Name{ID: "v"}))
			assert.Equal(t, tt.want, Print(m))
		})
	}
}

func TestNewCall(t *testing.T) {
	c := NewCall("_", NewString("Hello"))
	assert.Equal(t, `_("Hello")`, PrintExpr(c))
	assert.Equal(t, "_", c.FuncName())
}

func TestSlotLooksThroughParens(t *testing.T) {
	m := mustParse(t, "x = ((\"a\"))\n")
	a := m.Body[0].(*Assign)
	slot := Slot(&a.Value)
	_, ok := (*slot).(*Constant)
	require.True(t, ok)
	*slot = &Name{ID: "y"}
	assert.Equal(t, "x = ((y))\n", Print(m))
}
