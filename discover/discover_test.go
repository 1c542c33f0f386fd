package discover

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAppFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{
		"shop/models.py",
		"shop/admin.py",
		"shop/forms.py",
		"shop/__init__.py",
		"shop/apps.py",
		"shop/urls.py",
		"shop/tests.py",
		"shop/test_views.py",
		"shop/migrations/0001_initial.py",
		"shop/tests/test_models.py",
		"shop/models/extra.py",
		"shop/__pycache__/models.cpython-312.py",
		"shop/generated/schema.py",
		"shop/notes.txt",
		"blog/models.py",
	} {
		touch(t, root, rel)
	}
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := AppFiles(root, "shop", DefaultExclude)
	if err != nil {
		t.Fatalf("AppFiles: %v", err)
	}
	want := []string{
		filepath.Join(root, "shop", "admin.py"),
		filepath.Join(root, "shop", "forms.py"),
		filepath.Join(root, "shop", "models.py"),
		filepath.Join(root, "shop", "models", "extra.py"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("AppFiles() mismatch (-want +got):\n%s", diff)
	}

	got, err = AppFiles(root, "shop", []string{"admin.py", "models/"})
	if err != nil {
		t.Fatalf("AppFiles custom: %v", err)
	}
	for _, p := range got {
		if filepath.Base(p) == "admin.py" || filepath.Base(filepath.Dir(p)) == "models" {
			t.Fatalf("custom exclusion leaked %s", p)
		}
	}
}

func TestAppFilesMissingApp(t *testing.T) {
	t.Parallel()

	_, err := AppFiles(t.TempDir(), "nope", DefaultExclude)
	if !errors.Is(err, ErrAppNotFound) {
		t.Fatalf("err = %v, want ErrAppNotFound", err)
	}
}

func TestModelFiles(t *testing.T) {
	t.Parallel()

	root := "/srv/app"
	got := ModelFiles(root, []string{
		"shop.models",
		"shop.models.product",
		"standalone",
		" shop.models ",
		"",
	})
	want := []string{
		filepath.Join(root, "shop", "models.py"),
		filepath.Join(root, "shop", "models", "product.py"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ModelFiles() mismatch (-want +got):\n%s", diff)
	}
}
