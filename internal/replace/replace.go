// Package replace performs literal placeholder substitution across a
// generated project tree.
package replace

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// Replacement maps one literal token to its substitution. Slice order
// is application order; there are no escaping or regex semantics.
type Replacement struct {
	Token string
	Value string
}

// DefaultIgnores excludes version control metadata from substitution.
var DefaultIgnores = []string{".git", ".git/**"}

// Apply walks every regular file under root and substitutes each
// replacement's token, in order, rewriting a file only when its content
// actually changes. Entries that cannot be read are skipped so one
// unreadable corner of the tree does not abort provisioning. Symlinks
// are never followed or rewritten.
func Apply(root string, replacements []Replacement, ignoreGlobs []string) error {
	if len(replacements) == 0 {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if ignored(rel, ignoreGlobs) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return rewrite(path, d, replacements)
	})
}

func rewrite(path string, d fs.DirEntry, replacements []Replacement) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("skipping unreadable file")
		return nil
	}
	out := data
	for _, r := range replacements {
		out = bytes.ReplaceAll(out, []byte(r.Token), []byte(r.Value))
	}
	if bytes.Equal(out, data) {
		return nil
	}
	mode := fs.FileMode(0o644)
	if info, err := d.Info(); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, out, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ignored(rel string, globs []string) bool {
	for _, g := range globs {
		if g == "" {
			continue
		}
		ok, err := doublestar.Match(g, rel)
		if err == nil && ok {
			return true
		}
	}
	return false
}
