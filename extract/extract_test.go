package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestMakemessagesArgs(t *testing.T) {
	t.Parallel()

	m := NewMakemessages("", nil, "")
	got := m.Args([]string{"fr", "de"})
	want := []string{"python", "manage.py", "makemessages", "-l", "fr", "-l", "de"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Args() = %v, want %v", got, want)
	}

	custom := NewMakemessages("python3", []string{"django-admin", "makemessages", "--no-obsolete"}, "")
	got = custom.Args([]string{"uk"})
	want = []string{"django-admin", "makemessages", "--no-obsolete", "-l", "uk"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("custom Args() = %v, want %v", got, want)
	}

	py3 := NewMakemessages("python3", nil, "")
	if py3.Command[0] != "python3" {
		t.Fatalf("interpreter = %q, want python3", py3.Command[0])
	}
}

func TestNewFormatterDefault(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, "")
	if !reflect.DeepEqual(f.Command, DefaultFormatCommand) {
		t.Fatalf("Command = %v, want %v", f.Command, DefaultFormatCommand)
	}
}

func TestRunFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	err := Run(ctx, "", []string{"gettextify-no-such-binary", "x"})
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("missing binary error = %v, want *ToolError", err)
	}

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	err = Run(ctx, "", []string{"sh", "-c", "echo broken >&2; exit 3"})
	if !errors.As(err, &te) {
		t.Fatalf("exit 3 error = %v, want *ToolError", err)
	}
	if !strings.Contains(te.Stderr, "broken") {
		t.Fatalf("Stderr = %q, want it to contain %q", te.Stderr, "broken")
	}

	if err := Run(ctx, "", nil); err == nil {
		t.Fatal("empty argv should fail")
	}
}

func TestFormatterRunsOnFile(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "models.py")
	if err := os.WriteFile(path, []byte("x=1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// "sh -c script sh <file>" appends to the file it is given.
	f := NewFormatter([]string{"sh", "-c", `echo "# formatted" >> "$1"`, "sh"}, dir)
	if err := f.Format(context.Background(), path); err != nil {
		t.Fatalf("Format: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x=1\n# formatted\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	in := "1\n2\n3\n4\n5\n6\n7\n"
	if got := tail(in); got != "3\n4\n5\n6\n7" {
		t.Fatalf("tail() = %q", got)
	}
}
