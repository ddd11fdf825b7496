// Package slug derives URL-safe identifiers and display titles from uploaded filenames.
package slug

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLength bounds the base slug derived from a filename.
const MaxLength = 50

var (
	// extension matches a final ".ext" segment that contains no path separator.
	extension = regexp.MustCompile(`\.[^/.]+$`)
	// nonAlphanumeric matches any run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// wordSeparators matches characters rendered as spaces in titles.
	wordSeparators = regexp.MustCompile(`[_-]`)
)

// FromFilename converts a filename into a lowercase, hyphen-separated slug
// of at most MaxLength characters. It never fails; an empty name gives "".
func FromFilename(filename string) string {
	result := strings.ToLower(filename)
	result = StripExtension(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Title picks the display title for an uploaded photo. A meaningful subject
// wins; otherwise the filename is humanized ("sunset_beach.jpg" -> "Sunset Beach").
func Title(filename, subject string) string {
	if s := strings.TrimSpace(subject); s != "" && !strings.EqualFold(s, "untitled") {
		return s
	}

	name := StripExtension(filename)
	name = wordSeparators.ReplaceAllString(name, " ")
	return strings.TrimSpace(capitalizeWords(name))
}

// StripExtension removes the final extension from name, if any.
func StripExtension(name string) string {
	return extension.ReplaceAllString(name, "")
}

// capitalizeWords upper-cases the first character of every word.
func capitalizeWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevWord := false
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		word := isWordRune(r)
		if word && !prevWord {
			r = unicode.ToUpper(r)
		}
		prevWord = word
		b.WriteRune(r)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
