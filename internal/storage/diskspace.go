package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	apperrors "github.com/glefebvre/mediasort/internal/errors"
)

// DiskSpace represents available disk space information
type DiskSpace struct {
	Available uint64  // Available bytes for unprivileged users
	Free      uint64  // Free bytes on filesystem
	Total     uint64  // Total bytes on filesystem
	UsedPct   float64 // Percentage of space used
}

// String renders the space in human readable units
func (d *DiskSpace) String() string {
	return fmt.Sprintf("%s free of %s (%.1f%% used)",
		humanize.IBytes(d.Available), humanize.IBytes(d.Total), d.UsedPct)
}

// existingAncestor returns path or its closest existing parent
func existingAncestor(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	checkPath := absPath
	for {
		if _, err := os.Stat(checkPath); err == nil {
			return checkPath, nil
		}
		parent := filepath.Dir(checkPath)
		if parent == checkPath {
			return "", fmt.Errorf("no existing directory found in path")
		}
		checkPath = parent
	}
}

// GetDiskSpace returns disk space information for the given path.
// A path that does not exist yet is measured on its closest existing parent.
func GetDiskSpace(path string) (*DiskSpace, error) {
	checkPath, err := existingAncestor(path)
	if err != nil {
		return nil, apperrors.FilesystemError("statfs", path, err)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(checkPath, &stat); err != nil {
		return nil, apperrors.FilesystemError("statfs", checkPath, err)
	}

	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	available := stat.Bavail * uint64(stat.Bsize)
	used := total - free
	usedPct := 0.0
	if total > 0 {
		usedPct = float64(used) / float64(total) * 100
	}

	return &DiskSpace{
		Available: available,
		Free:      free,
		Total:     total,
		UsedPct:   usedPct,
	}, nil
}

// HasEnoughSpace checks if there's enough available disk space for the given size
func HasEnoughSpace(path string, requiredBytes uint64) (bool, *DiskSpace, error) {
	space, err := GetDiskSpace(path)
	if err != nil {
		return false, nil, err
	}

	return space.Available >= requiredBytes, space, nil
}

// SameDevice reports whether two paths live on the same filesystem, in which
// case a rename between them never crosses devices.
func SameDevice(a, b string) (bool, error) {
	devA, err := deviceOf(a)
	if err != nil {
		return false, err
	}
	devB, err := deviceOf(b)
	if err != nil {
		return false, err
	}
	return devA == devB, nil
}

func deviceOf(path string) (uint64, error) {
	checkPath, err := existingAncestor(path)
	if err != nil {
		return 0, apperrors.FilesystemError("stat", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Stat(checkPath, &stat); err != nil {
		return 0, apperrors.FilesystemError("stat", checkPath, err)
	}
	return uint64(stat.Dev), nil
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable
func CheckDirectoryAccess(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.FilesystemError("stat", path, err)
	}
	if !info.IsDir() {
		return apperrors.FilesystemError("stat", path, fmt.Errorf("is not a directory"))
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return apperrors.FilesystemError("access", path, fmt.Errorf("insufficient permissions: %w", err))
	}
	return nil
}
