package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/gettextify/config"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		filled  int
	}{
		{"clamps below zero", -10, 4, 0},
		{"half", 50, 4, 2},
		{"rounds down", 99, 10, 9},
		{"clamps above hundred", 120, 4, 4},
	}

	for _, tc := range tests {
		got := progressBar(tc.percent, tc.width, colorGreen)
		if n := strings.Count(got, "█"); n != tc.filled {
			t.Fatalf("%s: %d filled cells in %q, want %d", tc.name, n, got, tc.filled)
		}
		if n := strings.Count(got, "░"); n != tc.width-tc.filled {
			t.Fatalf("%s: %d empty cells in %q, want %d", tc.name, n, got, tc.width-tc.filled)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"de, fr", "", "pt_BR", " ,uk"})
	want := []string{"de", "fr", "pt_BR", "uk"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitList() = %v, want %v", got, want)
	}
	if got := splitList(nil); got != nil {
		t.Fatalf("splitList(nil) = %v, want nil", got)
	}
}

func TestIntersectLanguages(t *testing.T) {
	got := intersectLanguages([]string{"de", "fr", "uk"}, []string{"uk", " de", "es"})
	want := []string{"uk", "de"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intersectLanguages() = %v, want %v", got, want)
	}
}

func TestDedupe(t *testing.T) {
	in := []string{"a.py", "b.py", "a.py", "c.py", "b.py"}
	got := dedupe(in)
	want := []string{"a.py", "b.py", "c.py"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupe() = %v, want %v", got, want)
	}
	if in[1] != "b.py" || in[2] != "a.py" {
		t.Fatalf("dedupe() modified its input: %v", in)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "gettextify version "+version) {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestRunStatus(t *testing.T) {
	root := t.TempDir()
	po := `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"

msgid "Name"
msgstr "Nom"

msgid "Price"
msgstr ""
`
	dir := filepath.Join(root, "locale", "fr", "LC_MESSAGES")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "django.po"), []byte(po), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runStatus(&out, root, config.Defaults(), nil); err != nil {
		t.Fatalf("runStatus: %v", err)
	}
	got := out.String()
	for _, want := range []string{"locale", "fr", " 50%", "1/2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("status output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	if err := runStatus(&out, root, config.Defaults(), []string{"de"}); err != nil {
		t.Fatalf("runStatus(de): %v", err)
	}
	if strings.Contains(out.String(), "fr") {
		t.Fatalf("filtered status shows fr:\n%s", out.String())
	}
}

func TestResolveProvider(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	prov, err := resolveProvider(config.Provider{Name: "ollama", Model: "qwen2.5"})
	if err != nil {
		t.Fatalf("resolveProvider(ollama): %v", err)
	}
	if prov.Model != "qwen2.5" || prov.BaseURL == "" {
		t.Fatalf("ollama provider = %+v", prov)
	}

	if _, err := resolveProvider(config.Provider{Name: "groq"}); err == nil || !strings.Contains(err.Error(), "auth login") {
		t.Fatalf("groq without key: err = %v", err)
	}
	if _, err := resolveProvider(config.Provider{Name: "deepl"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
}
