package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// EnvBrowser names a command that opens URLs, taking precedence over the platform default.
const EnvBrowser = "BROWSER"

var (
	getRuntime   = func() string { return runtime.GOOS }
	startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// browserCommand picks the command that opens url on the current platform.
func browserCommand(url string) (*exec.Cmd, error) {
	if custom := strings.Fields(os.Getenv(EnvBrowser)); len(custom) > 0 {
		return exec.Command(custom[0], append(custom[1:], url)...), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens url in the user's browser without waiting for it to exit.
//
// $BROWSER overrides the platform default (open, xdg-open, rundll32).
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}
	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
