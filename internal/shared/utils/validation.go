package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxUsernameLength = 64
	MaxPasswordLength = 128
	MaxPathLength     = 4096
	MaxPathsPerCall   = 10000
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidatePath validates a client-supplied path field. Sandbox checks happen
// later, in the resolver.
func ValidatePath(path, fieldName string, required bool) error {
	return ValidateString(path, fieldName, 1, MaxPathLength, required)
}

// ValidatePaths validates a non-empty list of paths.
func ValidatePaths(paths []string, fieldName string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(paths) > MaxPathsPerCall {
		return fmt.Errorf("too many %s (maximum %d)", fieldName, MaxPathsPerCall)
	}

	for i, p := range paths {
		if err := ValidatePath(p, fmt.Sprintf("%s[%d]", fieldName, i), true); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCredentials checks the shape of a login request.
func ValidateCredentials(login, password string) error {
	if err := ValidateString(login, "login", 1, MaxUsernameLength, true); err != nil {
		return err
	}
	return ValidateString(password, "password", 1, MaxPasswordLength, true)
}
