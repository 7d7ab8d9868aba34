package credentials

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/yukikurage/growmap/internal/constants"
)

var (
	ErrUsernameLength  = errors.New("username must be between 3 and 50 characters")
	ErrUsernameCharset = errors.New("username may contain only letters, digits, underscore and hyphen")

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-\p{Cyrillic}]+$`)
)

// ValidateUsername checks length and the allowed character set (ASCII
// letters, digits, underscore, hyphen and Cyrillic letters).
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameCharset
	}
	return nil
}
