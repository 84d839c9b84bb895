package validation

import (
	"errors"
	"strings"
	"unicode"
)

const maxZoneNameLength = 128

var (
	ErrZoneNameEmpty          = errors.New("zone name cannot be empty")
	ErrZoneNameTooLong        = errors.New("zone name too long (max 128 characters)")
	ErrZoneNameLeadingDash    = errors.New("zone name cannot start with '-'")
	ErrZoneNameInvalidCharSet = errors.New("zone name contains invalid characters")
)

// Zone checks a user supplied zone name before it is placed on a
// firewall-cmd command line. firewalld itself only accepts letters, digits,
// '-', '_' and '/' in names.
func Zone(name string) error {
	if name == "" {
		return ErrZoneNameEmpty
	}
	return checkZone(name)
}

// OptionalZone is Zone for places where an empty name means "let
// firewall-cmd pick the default zone".
func OptionalZone(name string) error {
	if name == "" {
		return nil
	}
	return checkZone(name)
}

func checkZone(name string) error {
	if len(name) > maxZoneNameLength {
		return ErrZoneNameTooLong
	}
	if strings.HasPrefix(name, "-") {
		return ErrZoneNameLeadingDash
	}
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		if r == '-' || r == '_' || r == '/' {
			continue
		}
		return ErrZoneNameInvalidCharSet
	}
	return nil
}
