package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	apperrors "github.com/glefebvre/mediasort/internal/errors"
)

// FileEntry is a regular file found during enumeration
type FileEntry struct {
	Path      string
	Name      string
	Extension string // lowercased, without the dot
	Stem      string // name without its last extension
}

// NewFileEntry derives name, extension and stem from a path.
// A dot-file such as ".nfo" keeps its whole name as stem and has no extension.
func NewFileEntry(path string) FileEntry {
	name := filepath.Base(path)
	entry := FileEntry{Path: path, Name: name, Stem: name}

	if idx := strings.LastIndex(name, "."); idx > 0 && idx < len(name)-1 {
		entry.Extension = strings.ToLower(name[idx+1:])
		entry.Stem = name[:idx]
	}
	return entry
}

// ListFiles returns every regular file below root, sorted by path.
// Symlinks are followed only when they point to a regular file.
func ListFiles(root string) ([]FileEntry, error) {
	files := make([]FileEntry, 0, 256)
	scratchBuffer := make([]byte, 64*1024)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if de.IsSymlink() {
				info, err := os.Stat(osPathname)
				if err != nil || !info.Mode().IsRegular() {
					return nil
				}
			} else if !de.IsRegular() {
				return nil
			}
			files = append(files, NewFileEntry(osPathname))
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			return godirwalk.Halt
		},
		ScratchBuffer: scratchBuffer,
	})
	if err != nil {
		return nil, apperrors.FilesystemError("walk", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ListDirs returns every directory below root, root itself excluded
func ListDirs(root string) ([]string, error) {
	var dirs []string
	root = filepath.Clean(root)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() && osPathname != root {
				dirs = append(dirs, osPathname)
			}
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			return godirwalk.Halt
		},
	})
	if err != nil {
		return nil, apperrors.FilesystemError("walk", root, err)
	}

	sort.Strings(dirs)
	return dirs, nil
}

// ListRootFiles returns the regular files directly inside dir, sorted by name.
// A missing directory yields no entries.
func ListRootFiles(dir string) ([]FileEntry, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, apperrors.FilesystemError("list", dir, err)
	}

	files := make([]FileEntry, 0, len(dirents))
	for _, de := range dirents {
		if !de.IsRegular() {
			continue
		}
		files = append(files, NewFileEntry(filepath.Join(dir, de.Name())))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// IsEmptyDir reports whether dir has no entries
func IsEmptyDir(dir string) (bool, error) {
	names, err := godirwalk.ReadDirnames(dir, nil)
	if err != nil {
		return false, apperrors.FilesystemError("list", dir, err)
	}
	return len(names) == 0, nil
}

// SortDeepestFirst orders paths by descending depth, ties broken by path
func SortDeepestFirst(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		di := strings.Count(filepath.Clean(paths[i]), string(filepath.Separator))
		dj := strings.Count(filepath.Clean(paths[j]), string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return paths[i] > paths[j]
	})
}

// DirSize returns the total size of regular files below root
func DirSize(root string) (uint64, error) {
	var size uint64

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if !de.IsRegular() {
				return nil
			}
			info, err := os.Lstat(osPathname)
			if err != nil {
				return nil
			}
			size += uint64(info.Size())
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
		Unsorted: true,
	})
	if err != nil {
		return 0, apperrors.FilesystemError("walk", root, err)
	}
	return size, nil
}
