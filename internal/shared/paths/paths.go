// Package paths holds the host path conventions the sandbox relies on.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Conventional mount roots for external storage on Linux hosts.
const (
	Mnt      = "/mnt"
	Media    = "/media"
	VarMedia = "/var/media"
	VarMnt   = "/var/mnt"
)

// DefaultSystemDrive is used when %SystemDrive% is unset on Windows.
const DefaultSystemDrive = "C:"

// ExternalRoots returns the fixed external mount roots.
func ExternalRoots() []string {
	return []string{Mnt, Media, VarMedia, VarMnt}
}

// Within reports whether p is root or lies below it. Both must be clean
// absolute paths.
func Within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// IsExternalPath reports whether p lies under one of the fixed external roots.
func IsExternalPath(p string) bool {
	for _, root := range ExternalRoots() {
		if Within(root, p) {
			return true
		}
	}
	return false
}

// Ancestors returns p and each of its parents, nearest first, ending at the
// filesystem root.
func Ancestors(p string) []string {
	p = filepath.Clean(p)
	out := []string{p}
	for {
		parent := filepath.Dir(p)
		if parent == p {
			return out
		}
		out = append(out, parent)
		p = parent
	}
}

// ValidateName checks that name is a single usable path element.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("name %q is reserved", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name cannot contain path separators")
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("name contains invalid characters")
	}
	return nil
}
