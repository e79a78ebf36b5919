package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		wantErr  bool
	}{
		{"required empty", "", true, true},
		{"optional empty", "", false, false},
		{"ok", "docs", true, false},
		{"too long", strings.Repeat("a", 11), true, true},
		{"null byte", "a\x00b", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.value, "field", 1, 10, tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePaths(t *testing.T) {
	assert.ErrorContains(t, ValidatePaths(nil, "paths"), "paths is required")
	assert.ErrorContains(t, ValidatePaths([]string{"a", ""}, "paths"), "paths[1] is required")
	assert.NoError(t, ValidatePaths([]string{"a", "/mnt/b"}, "paths"))
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("admin", "admin"))
	assert.ErrorContains(t, ValidateCredentials("", "x"), "login is required")
	assert.ErrorContains(t, ValidateCredentials("admin", ""), "password is required")
}

func TestWeakETag(t *testing.T) {
	mod := time.Unix(1700000000, 0)

	a := WeakETag("/home/deck/a.txt", 10, mod)
	assert.True(t, strings.HasPrefix(a, `W/"`))
	assert.Equal(t, a, WeakETag("/home/deck/a.txt", 10, mod))
	assert.NotEqual(t, a, WeakETag("/home/deck/a.txt", 11, mod))
	assert.NotEqual(t, a, WeakETag("/home/deck/a.txt", 10, mod.Add(time.Second)))
}
