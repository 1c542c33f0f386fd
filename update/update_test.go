package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/gettextify/pyast"
)

const model = `from django.db import models


class Product(models.Model):
    name = models.CharField(max_length=50)
`

const wrapped = `from django.db import models
from django.utils.translation import gettext_lazy as _


class Product(models.Model):
    name = models.CharField(max_length=50, verbose_name=_("Name"))
`

type recordingFormatter struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *recordingFormatter) Format(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return f.err
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o640))
	return p
}

func TestFileRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "models.py", model)
	f := &recordingFormatter{}

	res, err := File(context.Background(), path, Options{Formatter: f})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 1, res.Stats.Wrapped)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wrapped, string(data))
	assert.Equal(t, []string{path}, f.paths)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// A second run finds nothing to do and leaves the file alone.
	res, err = File(context.Background(), path, Options{Formatter: f})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Len(t, f.paths, 1)
}

func TestFileDryRun(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "models.py", model)

	res, err := File(context.Background(), path, Options{DryRun: true})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Equal(t, wrapped, res.Output)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, model, string(data))
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := File(context.Background(), filepath.Join(dir, "missing.py"), Options{})
	assert.ErrorIs(t, err, ErrSourceNotFound)

	bad := write(t, dir, "bad.py", "class (:\n")
	_, err = File(context.Background(), bad, Options{})
	assert.ErrorIs(t, err, pyast.ErrSyntax)

	good := write(t, dir, "good.py", model)
	boom := errors.New("formatter exploded")
	_, err = File(context.Background(), good, Options{Formatter: &recordingFormatter{err: boom}})
	assert.ErrorIs(t, err, boom)
}

func TestFilesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		write(t, dir, "a.py", model),
		write(t, dir, "broken.py", "def (:\n"),
		filepath.Join(dir, "gone.py"),
		write(t, dir, "b.py", model),
	}

	rep := Files(context.Background(), paths, Options{Concurrency: 2, Logger: zerolog.Nop()})
	require.Len(t, rep.Results, 4)
	assert.True(t, rep.Results[0].Written)
	assert.Error(t, rep.Results[1].Err)
	assert.True(t, rep.Results[2].Skipped)
	assert.NoError(t, rep.Results[2].Err)
	assert.True(t, rep.Results[3].Written)
	assert.Equal(t, 2, rep.Written())

	err := rep.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, pyast.ErrSyntax)
}

func TestFilesEmpty(t *testing.T) {
	rep := Files(context.Background(), nil, Options{})
	assert.NoError(t, rep.Err())
	assert.Empty(t, rep.Results)
}
