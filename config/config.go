// Package config reads the .gettextify.yaml project configuration.
//
// The file lives in the Django project root (next to manage.py). Every key
// is optional; defaults are applied on load and GETTEXTIFY_* environment
// variables override what the file says. Command-line flags override both
// and are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/gettextify/langmeta"
)

// FileName is the default config file name.
const FileName = ".gettextify.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GETTEXTIFY"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .gettextify.yaml structure.
type File struct {
	// Languages are the target language codes (Django form: de, pt_BR).
	// When empty, languages are detected from the locale paths.
	Languages []string `yaml:"languages,omitempty"`
	// LocalePaths are the catalog roots relative to the project root
	// (Django's LOCALE_PATHS; default "locale").
	LocalePaths []string `yaml:"locale_paths,omitempty"`
	// Apps are the app labels wrapped when none are given on the command line.
	Apps []string `yaml:"apps,omitempty"`
	// Exclude lists gitignore-style patterns of files never rewritten.
	Exclude []string `yaml:"exclude,omitempty"`
	// Python is the interpreter running manage.py (default "python").
	Python string `yaml:"python,omitempty"`
	// Concurrency bounds the file and language pools (default 5).
	Concurrency int `yaml:"concurrency,omitempty"`

	// Format runs on rewritten files (default "ruff format").
	Format Tool `yaml:"format"`
	// Extract runs makemessages before translating; an empty command means
	// "<python> manage.py makemessages".
	Extract  Tool     `yaml:"extract"`
	Provider Provider `yaml:"provider"`
}

// Tool is an external command that can be switched on.
type Tool struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command,omitempty"`
}

// Provider selects and tunes the translation service.
type Provider struct {
	Name       string        `yaml:"name,omitempty"`
	Model      string        `yaml:"model,omitempty"`
	BaseURL    string        `yaml:"base_url,omitempty"`
	Proxy      string        `yaml:"proxy,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty"`
	// APIKey is never read from the file; it comes from the environment,
	// a flag or the credentials store.
	APIKey string `yaml:"-"`
}

// Env holds the GETTEXTIFY_* overrides (GETTEXTIFY_API_KEY, ...).
type Env struct {
	Languages   []string      `split_words:"true"`
	LocalePaths []string      `split_words:"true"`
	Python      string        `split_words:"true"`
	Concurrency int           `split_words:"true"`
	Provider    string        `split_words:"true"`
	Model       string        `split_words:"true"`
	BaseURL     string        `split_words:"true"`
	Proxy       string        `split_words:"true"`
	Timeout     time.Duration `split_words:"true"`
	APIKey      string        `split_words:"true"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() *File {
	return &File{
		LocalePaths: []string{"locale"},
		Python:      "python",
		Concurrency: 5,
		Format:      Tool{Command: []string{"ruff", "format"}},
		Provider:    Provider{Name: "google"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads .gettextify.yaml from rootDir, applies defaults and then the
// environment. A missing file is not an error.
func Load(rootDir string) (*File, error) {
	f := Defaults()
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := f.applyEnv(); err != nil {
		return nil, err
	}
	f.fillDefaults()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *File) applyEnv() error {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("processing env vars overrides: %w", err)
	}
	if len(env.Languages) > 0 {
		f.Languages = env.Languages
	}
	if len(env.LocalePaths) > 0 {
		f.LocalePaths = env.LocalePaths
	}
	if env.Python != "" {
		f.Python = env.Python
	}
	if env.Concurrency != 0 {
		f.Concurrency = env.Concurrency
	}
	p := &f.Provider
	if env.Provider != "" {
		p.Name = env.Provider
	}
	if env.Model != "" {
		p.Model = env.Model
	}
	if env.BaseURL != "" {
		p.BaseURL = env.BaseURL
	}
	if env.Proxy != "" {
		p.Proxy = env.Proxy
	}
	if env.Timeout != 0 {
		p.Timeout = env.Timeout
	}
	p.APIKey = env.APIKey
	return nil
}

// fillDefaults restores defaults the file explicitly emptied.
func (f *File) fillDefaults() {
	d := Defaults()
	if len(f.LocalePaths) == 0 {
		f.LocalePaths = d.LocalePaths
	}
	if f.Python == "" {
		f.Python = d.Python
	}
	if f.Concurrency == 0 {
		f.Concurrency = d.Concurrency
	}
	if len(f.Format.Command) == 0 {
		f.Format.Command = d.Format.Command
	}
	if f.Provider.Name == "" {
		f.Provider.Name = d.Provider.Name
	}
}

// Validate checks values that would only fail much later.
func (f *File) Validate() error {
	if f.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", f.Concurrency)
	}
	if f.Provider.Timeout < 0 {
		return fmt.Errorf("provider timeout must be positive, got %s", f.Provider.Timeout)
	}
	if f.Provider.MaxRetries < 0 {
		return fmt.Errorf("provider max_retries must be positive, got %d", f.Provider.MaxRetries)
	}
	for _, lang := range f.Languages {
		if _, err := langmeta.Parse(lang); err != nil {
			return fmt.Errorf("invalid language code %q", lang)
		}
	}
	return nil
}

// LocaleRoots returns the locale paths joined to rootDir.
func (f *File) LocaleRoots(rootDir string) []string {
	roots := make([]string, len(f.LocalePaths))
	for i, p := range f.LocalePaths {
		if filepath.IsAbs(p) {
			roots[i] = p
		} else {
			roots[i] = filepath.Join(rootDir, p)
		}
	}
	return roots
}

// TargetLanguages returns the configured languages, or those detected
// under the locale roots when none are configured.
func (f *File) TargetLanguages(rootDir string) []string {
	if len(f.Languages) > 0 {
		return f.Languages
	}
	return DetectLanguages(f.LocaleRoots(rootDir))
}
