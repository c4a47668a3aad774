package cmd

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// revealInFolder opens the platform file manager with the saved file
// selected, or failing that, its directory.
func revealInFolder(path string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", "/select,", path).Start()
	case "darwin":
		return exec.Command("open", "-R", path).Start()
	case "linux":
		return exec.Command("xdg-open", filepath.Dir(path)).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
