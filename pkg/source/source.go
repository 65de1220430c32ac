// Package source provides the Python files a batch analysis reads, from the
// working tree or from a git revision.
package source

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/panbanda/bigo/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// Source lists and reads Python files.
type Source interface {
	ContentSource
	// Files expands roots (files or directories) into Python file paths.
	Files(roots []string) ([]string, error)
}

// IsPython reports whether path names a Python source file.
func IsPython(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".py")
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Files implements Source. Explicitly named files are kept whatever their
// extension; directories contribute their .py files.
func (f *FilesystemSource) Files(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsPython(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// TreeSource reads files from a git tree.
// It is safe for concurrent use by multiple goroutines.
type TreeSource struct {
	tree vcs.Tree
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree.
func NewTree(tree vcs.Tree) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read implements ContentSource.
func (t *TreeSource) Read(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.File(filepath.ToSlash(path))
}

// Files implements Source. Roots are repository-relative; "." or no roots
// selects the whole tree.
func (t *TreeSource) Files(roots []string) ([]string, error) {
	t.mu.Lock()
	entries, err := t.tree.Entries()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var prefixes []string
	for _, r := range roots {
		r = path.Clean(filepath.ToSlash(r))
		if r == "." {
			prefixes = nil
			break
		}
		prefixes = append(prefixes, r)
	}

	var files []string
	for _, e := range entries {
		if !IsPython(e.Path) || !under(e.Path, prefixes) {
			continue
		}
		files = append(files, e.Path)
	}
	sort.Strings(files)
	return files, nil
}

func under(p string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, pre := range prefixes {
		if p == pre || strings.HasPrefix(p, pre+"/") {
			return true
		}
	}
	return false
}
