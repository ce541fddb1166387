package utils

import (
	"fmt"
	"syscall"
)

const (
	// MinimumFreeSpace is the minimum free disk space required (1GB).
	MinimumFreeSpace = 1 * 1024 * 1024 * 1024

	// MaximumDiskUsagePercent is the maximum allowed disk usage percentage.
	MaximumDiskUsagePercent = 90
)

// DiskSpaceInfo contains information about disk space.
type DiskSpaceInfo struct {
	TotalBytes     uint64
	FreeBytes      uint64
	AvailableBytes uint64
	UsedBytes      uint64
	UsedPercent    float64
}

// GetDiskSpace returns disk space information for a given path.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to get disk space: %w", err)
	}

	totalBytes := stat.Blocks * uint64(stat.Bsize)
	freeBytes := stat.Bfree * uint64(stat.Bsize)
	availableBytes := stat.Bavail * uint64(stat.Bsize)
	usedBytes := totalBytes - freeBytes
	usedPercent := float64(usedBytes) / float64(totalBytes) * 100

	return &DiskSpaceInfo{
		TotalBytes:     totalBytes,
		FreeBytes:      freeBytes,
		AvailableBytes: availableBytes,
		UsedBytes:      usedBytes,
		UsedPercent:    usedPercent,
	}, nil
}

// CheckDiskSpace checks whether an incoming write of the given size can be
// accepted. Returns (ok, reason, error); reason is set when ok is false.
func CheckDiskSpace(path string, writeSize int64) (bool, string, error) {
	info, err := GetDiskSpace(path)
	if err != nil {
		return false, "failed to check disk space", err
	}

	if info.AvailableBytes < MinimumFreeSpace {
		return false, "insufficient disk space (less than 1GB available)", nil
	}

	projectedUsed := info.UsedBytes + uint64(writeSize)
	projectedPercent := float64(projectedUsed) / float64(info.TotalBytes) * 100
	if projectedPercent > MaximumDiskUsagePercent {
		return false, fmt.Sprintf("write would exceed disk capacity limit (%d%%)", MaximumDiskUsagePercent), nil
	}

	if uint64(writeSize) > info.AvailableBytes {
		return false, "file size exceeds available disk space", nil
	}

	return true, "", nil
}

// FormatBytes formats bytes into human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
