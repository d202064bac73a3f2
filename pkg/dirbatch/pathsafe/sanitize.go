package pathsafe

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNameBytes is the longest name SanitizeName returns.
const MaxNameBytes = 255

var (
	illegalChars    = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	onlyDots        = regexp.MustCompile(`^\.+$`)
	windowsReserved = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailing = regexp.MustCompile(`[. ]+$`)
)

// SanitizeName strips everything that makes name unsafe as a single path
// segment on any common filesystem. The result may be empty.
func SanitizeName(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = illegalChars.ReplaceAllString(name, "")
	name = controlChars.ReplaceAllString(name, "")
	name = onlyDots.ReplaceAllString(name, "")
	name = windowsReserved.ReplaceAllString(name, "")
	name = windowsTrailing.ReplaceAllString(name, "")
	return truncate(name, MaxNameBytes)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
