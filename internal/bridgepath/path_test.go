package bridgepath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindGitRootAscends(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got := FindGitRoot(nested)
	gotReal, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	rootReal, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	require.Equal(t, rootReal, gotReal)
}

func TestFindGitRootReturnsEmptyWhenNoneFound(t *testing.T) {
	dir := t.TempDir()
	got := FindGitRoot(dir)
	require.Empty(t, got)
}

func TestProjectKeyReplacesSeparatorsAndStripsLeadingDash(t *testing.T) {
	key := ProjectKey("/home/user/projects/foo")
	require.Equal(t, "home-user-projects-foo", key)
}

func TestResolveMemoryDirFallsBackToWorkingDirWithoutGit(t *testing.T) {
	dir := t.TempDir()

	memDir, err := ResolveMemoryDir(dir)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	want := filepath.Join(home, ".claude", "projects", ProjectKey(dir), "memory")
	require.Equal(t, want, memDir)
}
