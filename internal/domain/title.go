package domain

import "strings"

// ValidTitle reports whether title is non-empty after trimming.
func ValidTitle(title string) bool {
	return strings.TrimSpace(title) != ""
}

// NormalizeTitle trims title and rejects blank input.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrInvalidTitle
	}
	return title, nil
}
