package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ValidatePath validates and normalizes path
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	// Expand environment variables
	expanded := os.ExpandEnv(path)

	// Convert to absolute path
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	// Check existence
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}

	return absPath, nil
}

// GetSafeTempPaths returns safe temporary paths for the current platform
func GetSafeTempPaths() ([]string, error) {
	candidates := []string{os.TempDir()}

	if runtime.GOOS == "windows" {
		if localappdata := os.Getenv("LOCALAPPDATA"); localappdata != "" {
			candidates = append(candidates, filepath.Join(localappdata, "Temp"))
		}
		if windir := os.Getenv("WINDIR"); windir != "" {
			candidates = append(candidates, filepath.Join(windir, "Temp"))
		}
	} else {
		if tmpdir := os.Getenv("TMPDIR"); tmpdir != "" {
			candidates = append(candidates, tmpdir)
		}
	}

	var paths []string
	seen := make(map[string]bool)

	for _, candidate := range candidates {
		validated, err := ValidatePath(candidate)
		if err != nil {
			continue
		}
		if seen[validated] {
			continue
		}
		seen[validated] = true
		paths = append(paths, validated)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no valid temporary paths found")
	}

	return paths, nil
}

// CheckWriteAccess checks write access to a directory by creating a probe file
func CheckWriteAccess(dir string) bool {
	probe := filepath.Join(dir, ".wipefile_write_test")

	file, err := os.Create(probe)
	if err != nil {
		return false
	}

	file.Close()
	os.Remove(probe)

	return true
}
