package catalog

import (
	"regexp"
	"strconv"
)

var (
	driveFileRe = regexp.MustCompile(`drive\.google\.com/file/d/([^/?#]+)`)
	steamAppRe  = regexp.MustCompile(`store\.steampowered\.com/app/(\d+)`)
)

// DirectDownloadURL rewrites Google Drive share links to their direct-download
// form. Other references are returned unchanged.
func DirectDownloadURL(ref string) string {
	m := driveFileRe.FindStringSubmatch(ref)
	if m == nil {
		return ref
	}
	return "https://drive.google.com/uc?export=download&id=" + m[1]
}

// SteamAppID extracts the app id from a Steam store URL.
func SteamAppID(text string) (int, bool) {
	m := steamAppRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsStoreURL reports whether text looks like a Steam store app URL.
func IsStoreURL(text string) bool {
	return steamAppRe.MatchString(text)
}
