package extraction

import (
	"regexp"
	"strings"
)

// MaxDirNameLength is the rune limit for per-listing directory names
const MaxDirNameLength = 50

var (
	listingIDPattern = regexp.MustCompile(`\d{10}`)
	unsafeDirChars   = regexp.MustCompile(`[^\p{L}\p{N}_\s.\-]`)
)

// ListingID returns the first 10-digit run in a listing URL
func ListingID(listingURL string) (string, bool) {
	id := listingIDPattern.FindString(listingURL)
	return id, id != ""
}

// SanitizeDirName maps a title to a filesystem-safe directory name.
// fallback is used when nothing usable is left.
func SanitizeDirName(title, fallback string) string {
	name := strings.TrimSpace(unsafeDirChars.ReplaceAllString(title, "_"))
	if runes := []rune(name); len(runes) > MaxDirNameLength {
		name = string(runes[:MaxDirNameLength])
	}
	if strings.Trim(name, ". ") == "" {
		return fallback
	}
	return name
}
