// Package settings stores gettextify user credentials: API keys of the
// translation providers, kept outside the project tree.
//
// The store lives in the XDG data directory:
//
//	$XDG_DATA_HOME/gettextify/auth.json  (default: ~/.local/share/gettextify/)
//
// The file is a JSON object keyed by provider ID. Permissions are 0600.
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. GETTEXTIFY_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	dataDirName = "gettextify"
	fileName    = "auth.json"
)

// Entry is the credential of one provider.
type Entry struct {
	Key string `json:"key"`
	// BaseURL is kept for custom-openai endpoints.
	BaseURL string    `json:"baseUrl,omitempty"`
	Saved   time.Time `json:"saved,omitempty"`
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Entry

// Providers returns the IDs that have an entry, sorted.
func (s Store) Providers() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// DataDir returns the gettextify data directory. It respects
// $XDG_DATA_HOME and falls back to ~/.local/share.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the auth.json path for display, or "" when the home
// directory is unknown.
func FilePath() string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, fileName)
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store. A missing file yields an empty store; a
// corrupt one is an error so that Save never silently drops keys.
func Load() (Store, error) {
	path := FilePath()
	if path == "" {
		return nil, errors.New("cannot locate the credentials file")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(Store), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if store == nil {
		store = make(Store)
	}
	return store, nil
}

// Save writes the credential store with 0600 permissions.
func Save(store Store) error {
	path := FilePath()
	if path == "" {
		return errors.New("cannot locate the credentials file")
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the entry of a provider, or nil.
func Get(providerID string) *Entry {
	store, err := Load()
	if err != nil {
		return nil
	}
	return store[providerID]
}

// SetAPIKey stores the key (and, for custom endpoints, the base URL) of a
// provider, replacing any previous entry.
func SetAPIKey(providerID, key, baseURL string) error {
	store, err := Load()
	if err != nil {
		return err
	}
	store[providerID] = &Entry{Key: key, BaseURL: baseURL, Saved: time.Now().UTC().Truncate(time.Second)}
	return Save(store)
}

// Remove deletes the credentials of a provider. Removing a missing entry
// is not an error.
func Remove(providerID string) error {
	store, err := Load()
	if err != nil {
		return err
	}
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll deletes the credentials file.
func RemoveAll() error {
	path := FilePath()
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// APIKey resolves the key of a provider: the flag value, then the
// environment value, then the store.
func APIKey(providerID, flag, env string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	if e := Get(providerID); e != nil {
		return e.Key
	}
	return ""
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
