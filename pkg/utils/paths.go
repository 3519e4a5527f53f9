package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "memoirs"

// GetDefaultDataDir returns the system-appropriate directory that holds the
// database and the media folder.
func GetDefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appDirName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appDirName)
	default:
		return filepath.Join(homeDir, ".local", "share", appDirName)
	}
}

// GetDefaultDBPathOnly returns a system-appropriate default path for the database.
func GetDefaultDBPathOnly() string {
	return filepath.Join(GetDefaultDataDir(), "memoirs.db")
}

// GetDefaultMediaDir returns where imported media files live by default.
func GetDefaultMediaDir() string {
	return filepath.Join(GetDefaultDataDir(), "media")
}

// ResolveAndEnsureDBPath expands and absolutizes providedPath (or the default)
// and creates its parent directory.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	targetPath, err := expand(providedPath, GetDefaultDBPathOnly())
	if err != nil {
		return "", err
	}
	if err := ensureDir(filepath.Dir(targetPath)); err != nil {
		return "", fmt.Errorf("failed to prepare directory for database: %w", err)
	}
	return targetPath, nil
}

// ResolveAndEnsureMediaDir does the same for the media directory itself.
func ResolveAndEnsureMediaDir(providedPath string) (string, error) {
	targetPath, err := expand(providedPath, GetDefaultMediaDir())
	if err != nil {
		return "", err
	}
	if err := ensureDir(targetPath); err != nil {
		return "", fmt.Errorf("failed to prepare media directory: %w", err)
	}
	return targetPath, nil
}

func expand(providedPath, fallback string) (string, error) {
	targetPath := providedPath
	if targetPath == "" {
		targetPath = fallback
	}

	if strings.HasPrefix(targetPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", targetPath, err)
		}
		targetPath = filepath.Join(homeDir, targetPath[2:])
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", targetPath, err)
	}
	return absPath, nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to stat directory '%s': %w", dir, err)
	}
	return nil
}
