// Package remote clones remote repositories for analysis.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// knownHosts are accepted without a scheme.
var knownHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// path@ref, where the @ follows the repository name. The @ of an SSH
	// user (git@host:owner/repo) comes before the last separator.
	ref := ""
	if idx := strings.LastIndex(path, "@"); idx > strings.LastIndexAny(path, "/:") {
		ref = path[idx+1:]
		path = path[:idx]
		if ref == "" {
			return nil, fmt.Errorf("empty ref in %q", path+"@")
		}
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"),
		strings.HasPrefix(path, "ssh://"), strings.HasPrefix(path, "git@"):
		return &Source{URL: path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	for _, host := range knownHosts {
		if strings.HasPrefix(path, host) && len(path) > len(host) {
			return &Source{URL: "https://" + path, Ref: ref}, nil
		}
	}

	return nil, nil
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// A dot before the slash indicates a domain or a relative path.
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	// dir/file.py is a missing local file, not a repository.
	if strings.HasSuffix(strings.ToLower(path), ".py") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the repository into a new temporary directory and checks out
// Ref. The ref is tried as a branch, then as a tag, each fetched alone;
// failing both it is resolved as a revision in a full clone. shallow limits the history to one commit where possible.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	opts := git.CloneOptions{URL: s.URL, Progress: progress}
	if shallow {
		opts.Depth = 1
	}

	if s.Ref == "" {
		return s.cloneInto(ctx, &opts)
	}

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(s.Ref),
		plumbing.NewTagReferenceName(s.Ref),
	} {
		o := opts
		o.ReferenceName = name
		o.SingleBranch = true
		err := s.cloneInto(ctx, &o)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}

	full := git.CloneOptions{URL: s.URL, Progress: progress}
	if err := s.cloneInto(ctx, &full); err != nil {
		return err
	}
	repo, err := git.PlainOpen(s.CloneDir)
	if err != nil {
		return s.fail(err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(s.Ref))
	if err != nil {
		return s.fail(fmt.Errorf("resolve %s: %w", s.Ref, err))
	}
	wt, err := repo.Worktree()
	if err != nil {
		return s.fail(err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return s.fail(fmt.Errorf("checkout %s: %w", s.Ref, err))
	}
	return nil
}

func (s *Source) cloneInto(ctx context.Context, opts *git.CloneOptions) error {
	dir, err := os.MkdirTemp("", "bigo-clone-*")
	if err != nil {
		return err
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	s.CloneDir = dir
	return nil
}

func (s *Source) fail(err error) error {
	s.Cleanup()
	return err
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
