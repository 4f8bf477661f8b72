package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open opens a download or store link in the user's default browser.
// Only http and https links are accepted.
func Open(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) link", link)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", link).Start()
	case "linux":
		return exec.Command("xdg-open", link).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", link).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
