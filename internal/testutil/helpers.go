package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Tree describes a filesystem fixture relative to a root.
// Entries ending in "/" are directories, everything else is a file.
type Tree []string

// TreeOption customizes how a fixture is written
type TreeOption func(*treeConfig)

type treeConfig struct {
	content func(rel string) string
	mode    os.FileMode
}

// WithContent sets the content written into every file of the tree
func WithContent(content string) TreeOption {
	return func(c *treeConfig) {
		c.content = func(string) string { return content }
	}
}

// WithFileMode sets the permission bits of created files
func WithFileMode(mode os.FileMode) TreeOption {
	return func(c *treeConfig) {
		c.mode = mode
	}
}

// CreateTree writes tree under root, creating parents as needed.
// By default each file holds its own relative path as content.
func CreateTree(t *testing.T, root string, tree Tree, opts ...TreeOption) {
	t.Helper()

	cfg := &treeConfig{
		content: func(rel string) string { return rel },
		mode:    0o644,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	for _, rel := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("failed to create directory %s: %v", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(cfg.content(rel)), cfg.mode); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// TempTree creates a fresh temporary root holding tree and returns it
func TempTree(t *testing.T, tree Tree, opts ...TreeOption) string {
	t.Helper()
	root := t.TempDir()
	CreateTree(t, root, tree, opts...)
	return root
}

// ListTree returns every entry below root as slash-separated relative paths,
// directories suffixed with "/", sorted.
func ListTree(t *testing.T, root string) []string {
	t.Helper()

	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("failed to list %s: %v", root, err)
	}

	sort.Strings(entries)
	return entries
}

// ReadFile returns the content of path, failing the test if it cannot be read
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// AssertExists fails the test if path does not exist
func AssertExists(t *testing.T, path string, message string) {
	t.Helper()
	if _, err := os.Lstat(path); err != nil {
		t.Fatalf("%s: expected %s to exist: %v", message, path, err)
	}
}

// AssertNotExists fails the test if path exists
func AssertNotExists(t *testing.T, path string, message string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Fatalf("%s: expected %s not to exist", message, path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("%s: stat %s: %v", message, path, err)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, message string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", message, err)
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual[T comparable](t *testing.T, expected, actual T, message string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", message, expected, actual)
	}
}
