package source

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/panbanda/bigo/internal/testutil"
	"github.com/panbanda/bigo/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Source = (*FilesystemSource)(nil)
	_ Source = (*TreeSource)(nil)
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	content, err := src.Read("../../go.mod")
	require.NoError(t, err)
	assert.Contains(t, string(content), "module github.com/panbanda/bigo")

	_, err = src.Read("nonexistent.txt")
	assert.Error(t, err)
}

func TestFilesystemFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, map[string]string{
		"a.py":          "x = 1\n",
		"pkg/b.py":      "y = 2\n",
		"pkg/notes.txt": "notes\n",
		"snippet.txt":   "z = 3\n",
	})

	files, err := NewFilesystem().Files([]string{dir, filepath.Join(dir, "snippet.txt")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.py"),
		filepath.Join(dir, "pkg", "b.py"),
		filepath.Join(dir, "snippet.txt"),
	}, files)

	_, err = NewFilesystem().Files([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

type fakeTree struct {
	files map[string]string
}

func (f *fakeTree) Entries() ([]vcs.TreeEntry, error) {
	var out []vcs.TreeEntry
	for p, c := range f.files {
		out = append(out, vcs.TreeEntry{Path: p, Size: int64(len(c))})
	}
	return out, nil
}

func (f *fakeTree) File(path string) ([]byte, error) {
	c, ok := f.files[path]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return []byte(c), nil
}

func TestTreeSource(t *testing.T) {
	src := NewTree(&fakeTree{files: map[string]string{
		"main.py":        "print(1)\n",
		"algo/sort.py":   "def s(xs):\n    return sorted(xs)\n",
		"algo/README.md": "# algo\n",
		"algorithms.py":  "x = 2\n",
	}})

	all, err := src.Files(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"algo/sort.py", "algorithms.py", "main.py"}, all)

	sub, err := src.Files([]string{"algo/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"algo/sort.py"}, sub)

	dot, err := src.Files([]string{"."})
	require.NoError(t, err)
	assert.Len(t, dot, 3)

	content, err := src.Read("algo/sort.py")
	require.NoError(t, err)
	assert.Contains(t, string(content), "sorted")

	_, err = src.Read("nope.py")
	assert.Error(t, err)
}

func TestIsPython(t *testing.T) {
	assert.True(t, IsPython("a.py"))
	assert.True(t, IsPython("dir/B.PY"))
	assert.False(t, IsPython("a.pyc"))
	assert.False(t, IsPython("py"))
}
