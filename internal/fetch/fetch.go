// Package fetch materializes a template's source tree into a new
// project directory, from a git remote or a local path.
package fetch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
)

// ownerRepo matches "owner/repo" shorthand, which resolves to GitHub.
var ownerRepo = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// EnsureTarget verifies dir can host a new project: it must not exist
// yet or must be an empty directory.
func EnsureTarget(dir string) error {
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("target directory %s exists and is non-empty", dir)
	}
	return nil
}

// Fetch copies the template named by source into dir. Source may be a
// local directory, a full git URL, or an owner/repo GitHub shorthand.
// A "#ref" suffix on a remote source selects a branch or tag.
func Fetch(ctx context.Context, source, dir string) error {
	source, ref := splitRef(source)

	if info, err := os.Stat(source); err == nil && info.IsDir() {
		if ref != "" {
			return fmt.Errorf("local template %s cannot be checked out at %q", source, ref)
		}
		logrus.WithFields(logrus.Fields{"source": source, "dir": dir}).Debug("copying local template")
		return copyTree(source, dir)
	}

	url := normalizeURL(source)
	logrus.WithFields(logrus.Fields{"url": url, "ref": ref, "dir": dir}).Debug("cloning template")
	return clone(ctx, url, ref, dir)
}

// splitRef separates an optional "#ref" fragment from a source string.
func splitRef(source string) (string, string) {
	if i := strings.LastIndex(source, "#"); i >= 0 {
		return source[:i], source[i+1:]
	}
	return source, ""
}

func normalizeURL(source string) string {
	if ownerRepo.MatchString(source) {
		return "https://github.com/" + source + ".git"
	}
	return source
}

func clone(ctx context.Context, url, ref, dir string) error {
	opts := git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	}

	if ref == "" {
		if _, err := git.PlainCloneContext(ctx, dir, false, &opts); err != nil {
			return fmt.Errorf("clone %s: %w", url, err)
		}
		return stripGitDir(dir)
	}

	// A fragment names a branch first, then a tag.
	branch := opts
	branch.ReferenceName = plumbing.NewBranchReferenceName(ref)
	if _, err := git.PlainCloneContext(ctx, dir, false, &branch); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return fmt.Errorf("reset %s after failed clone: %w", dir, rmErr)
		}
		tag := opts
		tag.ReferenceName = plumbing.NewTagReferenceName(ref)
		if _, tagErr := git.PlainCloneContext(ctx, dir, false, &tag); tagErr != nil {
			return fmt.Errorf("clone %s at %q: %w", url, ref, err)
		}
	}
	return stripGitDir(dir)
}

// stripGitDir drops the clone's history so the project starts fresh.
func stripGitDir(dir string) error {
	if err := os.RemoveAll(filepath.Join(dir, ".git")); err != nil {
		return fmt.Errorf("remove .git from %s: %w", dir, err)
	}
	return nil
}

// copyTree duplicates the template tree, leaving out git metadata.
// Symlinks are not carried over.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == ".git" {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mode := fs.FileMode(0o644)
		if info, err := d.Info(); err == nil {
			mode = info.Mode().Perm()
		}
		return os.WriteFile(target, data, mode)
	})
}
