package util

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameRunes = 255

// SanitizeFileName reduces an uploaded name to its final path element, drops
// control characters and caps the length. Names that reduce to "." or ".."
// are rejected.
func SanitizeFileName(name string) (string, error) {
	name = strings.ReplaceAll(CleanText(name), "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = TruncateRunes(strings.TrimSpace(name), maxFileNameRunes)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidFileName
	}
	return name, nil
}
