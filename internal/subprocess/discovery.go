package subprocess

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wagiedev/dap-session-go/internal/errors"
)

// Discover locates the adapter executable.
//
// An explicit path is used as-is and only checked for existence. Otherwise
// name is searched in PATH, then in /usr/local/bin, /usr/bin and
// ~/.local/bin.
func Discover(log *slog.Logger, path, name string) (string, error) {
	if path != "" {
		log.Debug("Using explicit adapter path", "adapter_path", path)

		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		return "", &errors.AdapterNotFoundError{Name: filepath.Base(path), SearchedPaths: []string{path}}
	}

	if name == "" {
		return "", &errors.AdapterNotFoundError{}
	}

	searchedPaths := make([]string, 0, 4)

	if found, err := exec.LookPath(name); err == nil {
		log.Debug("Found adapter in PATH", "adapter_path", found)

		return found, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	commonPaths := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local", "bin", name))
	}

	for _, candidate := range commonPaths {
		searchedPaths = append(searchedPaths, candidate)

		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			log.Debug("Found adapter at common path", "adapter_path", candidate)

			return candidate, nil
		}
	}

	log.Warn("Debug adapter not found", "name", name, "searched_paths", searchedPaths)

	return "", &errors.AdapterNotFoundError{Name: name, SearchedPaths: searchedPaths}
}
