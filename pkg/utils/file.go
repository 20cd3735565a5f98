package utils

import (
	"fmt"
	"io"
	"os"
)

// CheckFileExists reports whether the path exists and is a regular file.
func CheckFileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CheckDirExists reports whether the path exists and is a directory.
func CheckDirExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirExists creates the directory if it does not exist yet.
func EnsureDirExists(dirPath string) error {
	if dirPath == "" {
		return nil // empty path is treated as optional
	}

	if !CheckDirExists(dirPath) {
		return os.MkdirAll(dirPath, 0755)
	}

	return nil
}

// CopyFile copies src to dst, overwriting dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}

	return out.Sync()
}

// CopyFileIfMissing copies src to dst unless dst already exists. The first
// copy wins; an existing destination is never overwritten. Returns true when
// a copy was made.
func CopyFileIfMissing(src, dst string) (bool, error) {
	if CheckFileExists(dst) {
		return false, nil
	}
	if err := CopyFile(src, dst); err != nil {
		return false, err
	}
	return true, nil
}
