package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateModuleID rejects ids that are empty, oversized or contain control
// characters. Ids come from remote sources and end up in URLs and cache keys.
func ValidateModuleID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "module id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "module id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "module id contains control characters")
		}
	}
	return nil
}

// ValidateUserID checks that id is a UUID, the identifier format used by the
// remote backends. Fixture sources accept any non-empty id and skip this check.
func ValidateUserID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidUser, "user id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidUser, err, "user id %q is not a UUID", id)
	}
	return nil
}
