package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if want := filepath.Join(tmp, "gettextify"); dir != want {
		t.Fatalf("DataDir() = %q, want %q", dir, want)
	}
	if want := filepath.Join(tmp, "gettextify", "auth.json"); FilePath() != want {
		t.Fatalf("FilePath() = %q, want %q", FilePath(), want)
	}
}

func TestStoreLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store, err := Load()
	if err != nil || len(store) != 0 {
		t.Fatalf("Load() on empty dir = %v, %v", store, err)
	}

	if err := SetAPIKey("groq", "gsk_1234567890", ""); err != nil {
		t.Fatalf("SetAPIKey(groq): %v", err)
	}
	if err := SetAPIKey("custom-openai", "sk-abcdefghij", "https://llm.local/v1"); err != nil {
		t.Fatalf("SetAPIKey(custom-openai): %v", err)
	}

	info, err := os.Stat(FilePath())
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	store, err = Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if got := store.Providers(); !reflect.DeepEqual(got, []string{"custom-openai", "groq"}) {
		t.Fatalf("Providers() = %v", got)
	}
	if e := Get("custom-openai"); e == nil || e.BaseURL != "https://llm.local/v1" || e.Saved.IsZero() {
		t.Fatalf("Get(custom-openai) = %#v", e)
	}

	if err := Remove("groq"); err != nil {
		t.Fatalf("Remove(groq): %v", err)
	}
	if err := Remove("groq"); err != nil {
		t.Fatalf("Remove(groq) twice: %v", err)
	}
	if Get("groq") != nil {
		t.Fatal("groq entry should be gone")
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll(): %v", err)
	}
	if _, err := os.Stat(FilePath()); !os.IsNotExist(err) {
		t.Fatalf("auth.json still exists: %v", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := os.MkdirAll(filepath.Join(tmp, "gettextify"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(FilePath(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on a corrupt file")
	}
	if err := SetAPIKey("groq", "k", ""); err == nil {
		t.Fatal("SetAPIKey() should not overwrite a corrupt file")
	}
}

func TestAPIKeyLookupOrder(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	if err := SetAPIKey("groq", "stored", ""); err != nil {
		t.Fatal(err)
	}

	if got := APIKey("groq", "flag", "env"); got != "flag" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := APIKey("groq", "", "env"); got != "env" {
		t.Fatalf("env should win over store, got %q", got)
	}
	if got := APIKey("groq", "", ""); got != "stored" {
		t.Fatalf("store fallback = %q", got)
	}
	if got := APIKey("google-ai", "", ""); got != "" {
		t.Fatalf("unknown provider = %q", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q", got)
	}
	if got := MaskKey("gsk_1234567890"); got != "gsk_...7890" {
		t.Fatalf("MaskKey(long) = %q", got)
	}
}
