package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateTreeAndListTree(t *testing.T) {
	root := TempTree(t, Tree{"a/b.mkv", "c.txt", "empty/"})

	got := ListTree(t, root)
	want := []string{"a/", "a/b.mkv", "c.txt", "empty/"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		AssertEqual(t, want[i], got[i], "entry")
	}

	AssertEqual(t, "a/b.mkv", ReadFile(t, filepath.Join(root, "a", "b.mkv")), "default content")
}

func TestCreateTree_Options(t *testing.T) {
	root := TempTree(t, Tree{"x.bin"}, WithContent("data"), WithFileMode(0o600))
	path := filepath.Join(root, "x.bin")

	AssertEqual(t, "data", ReadFile(t, path), "content")
	info, err := os.Stat(path)
	AssertNoError(t, err, "stat")
	AssertEqual(t, os.FileMode(0o600), info.Mode().Perm(), "mode")
}

func TestListTree_MissingRoot(t *testing.T) {
	entries := ListTree(t, filepath.Join(t.TempDir(), "missing"))
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
	AssertNotExists(t, filepath.Join(t.TempDir(), "missing"), "missing root")
}
