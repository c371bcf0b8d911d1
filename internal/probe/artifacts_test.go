// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/crateprobe/crateprobe/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyArtifacts(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "target")

	mtime := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	files := map[string]string{
		"debug/deps/libfoo.rlib":           "foo",
		"debug/deps/foo.d":                 "deps",
		"debug/.fingerprint/foo-1/lib-foo": "fp",
		"debug/build/hello-2/build-script": "bin",
		"release/deps/libbar.rlib":         "bar",
	}
	for rel, content := range files {
		path := filepath.Join(src, filepath.FromSlash(rel))
		testutil.MustWriteFile(t, path, content)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	require.NoError(t, os.Chmod(filepath.Join(src, "debug", "build", "hello-2", "build-script"), 0o755))
	if runtime.GOOS != "windows" {
		require.NoError(t, os.Symlink("deps/libfoo.rlib", filepath.Join(src, "debug", "libfoo.rlib")))
	}

	require.NoError(t, copyArtifacts(context.Background(), src, dst, 3))

	for rel, content := range files {
		path := filepath.Join(dst, filepath.FromSlash(rel))
		assert.Equal(t, content, testutil.MustReadFile(t, path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(mtime), "%s mtime = %v", rel, info.ModTime())
	}

	info, err := os.Stat(filepath.Join(dst, "debug", "build", "hello-2", "build-script"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	if runtime.GOOS != "windows" {
		link, err := os.Readlink(filepath.Join(dst, "debug", "libfoo.rlib"))
		require.NoError(t, err)
		assert.Equal(t, "deps/libfoo.rlib", link)
	}
}

func TestCopyArtifacts_Canceled(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(src, "debug", "a"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := copyArtifacts(ctx, src, filepath.Join(t.TempDir(), "target"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "script.rs")
	testutil.MustWriteFile(t, path, "old")

	require.NoError(t, writeAtomic(path, []byte("new"), 0o640))
	assert.Equal(t, "new", testutil.MustReadFile(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	err := writeAtomic(filepath.Join(t.TempDir(), "gone", "script.rs"), []byte("x"), 0o644)
	assert.Error(t, err)
}
