package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// HashFields hashes fields joined by a separator that cannot appear in paths.
func HashFields(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x00")))
	return hex.EncodeToString(sum[:])
}

// WeakETag derives a validator for a file from its identity and stat data.
// Content is not read, so the tag is weak.
func WeakETag(path string, size int64, modTime time.Time) string {
	h := HashFields(path, strconv.FormatInt(size, 10), strconv.FormatInt(modTime.UnixNano(), 10))
	return `W/"` + h[:16] + `"`
}
