package media

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const timestampLayout = "20060102_150405"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// DeriveFilename returns the name an artifact is stored under: the item's
// creation time as a YYYYMMDD_HHMMSS prefix (UTC), followed by the
// sanitized original name. A creation time that does not parse as RFC 3339
// leaves the name unprefixed. Names are NFC-normalized so the same item
// produces the same bytes regardless of how the API composed its accents.
func DeriveFilename(name, creationTime string) string {
	base := SanitizeFileName(norm.NFC.String(name))
	if base == "" {
		base = "unnamed"
	}

	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(creationTime))
	if err != nil {
		return base
	}
	return parsed.UTC().Format(timestampLayout) + "_" + base
}

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
