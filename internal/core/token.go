package core

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultTokenLength = 8
	MaxTokenLength     = 32
)

// NewToken returns a random lowercase hex string of the given length, taken
// from a version 4 UUID. Lengths outside [1, MaxTokenLength] fall back to
// DefaultTokenLength.
func NewToken(length int) string {
	if length <= 0 || length > MaxTokenLength {
		length = DefaultTokenLength
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
}

// DisambiguatedName inserts token between the stem and the extension of name:
// "IMG_1.jpg" becomes "IMG_1 (token).jpg".
func DisambiguatedName(name, token string) string {
	ext := extension(name)
	return name[:len(name)-len(ext)] + " (" + token + ")" + ext
}

// extension is the suffix from the last dot, provided the dot neither starts
// the name nor ends it: ".hidden" and "file." have none.
func extension(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		switch name[i] {
		case '.':
			if i == len(name)-1 {
				return ""
			}
			return name[i:]
		case '/', '\\':
			return ""
		}
	}
	return ""
}
