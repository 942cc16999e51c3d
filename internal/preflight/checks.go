package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const bytesPerGiB = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies that the filesystem holding path has at
// least minFreeGiB gibibytes available to unprivileged writes.
func CheckDiskSpace(name, path string, minFreeGiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeBytes := stat.Bavail * uint64(stat.Bsize)
	freeGiB := float64(freeBytes) / bytesPerGiB
	if freeBytes < uint64(minFreeGiB)*bytesPerGiB {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%s (%.1f GiB free, %d GiB required)", path, freeGiB, minFreeGiB),
		}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%.1f GiB free)", path, freeGiB),
	}
}
