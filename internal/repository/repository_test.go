package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSChecker(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/data/a.csv", []byte("x"), 0644))

	c := NewFSChecker(fs, "/work")

	info, ok := c.Stat("data/a.csv")
	assert.True(t, ok)
	assert.False(t, info.IsDir)

	info, ok = c.Stat("data")
	assert.True(t, ok)
	assert.True(t, info.IsDir)

	_, ok = c.Stat("data/b.csv")
	assert.False(t, ok)
	_, ok = c.Stat("")
	assert.False(t, ok)
}

func TestBlobHasher(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "hello.txt", []byte("hello\n"), 0644))
	require.NoError(t, fs.MkdirAll("dir", 0755))

	h := NewBlobHasher(fs, "")

	sum, err := h.Hash("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", sum)

	_, err = h.Hash("dir")
	assert.Error(t, err)
	_, err = h.Hash("missing")
	assert.Error(t, err)
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRepository_Snapshot(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	writeFile(t, root, "data/models.csv", "a,b\n")
	writeFile(t, root, "data/colors.csv", "red\n")
	_, err = wt.Add("data")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	writeFile(t, root, "data/models.csv", "a,b,c\n")
	writeFile(t, root, "staged.txt", "new\n")
	_, err = wt.Add("staged.txt")
	require.NoError(t, err)
	writeFile(t, root, "scratch.txt", "tmp\n")

	r, err := Open(filepath.Join(root, "data"))
	require.NoError(t, err)

	snap, err := r.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, []string{"data/colors.csv", "data/models.csv", "staged.txt"}, snap.TrackedPaths)
	assert.Equal(t, []string{"scratch.txt"}, snap.UntrackedPaths)
	assert.Equal(t, []string{"data/models.csv"}, snap.UnstagedChanges)
	assert.Equal(t, []string{"staged.txt"}, snap.StagedChanges)
	assert.True(t, snap.Changed("data/models.csv"))
	assert.False(t, snap.Changed("data/colors.csv"))

	rel, err := r.Rel(filepath.Join(r.Root(), "data", "models.csv"))
	require.NoError(t, err)
	assert.Equal(t, "data/models.csv", rel)

	_, err = r.Rel(filepath.Dir(r.Root()))
	assert.Error(t, err)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}
