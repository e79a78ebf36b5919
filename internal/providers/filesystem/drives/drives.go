package drives

import (
	"context"
	"errors"
)

// ErrToolMissing is returned when the platform listing tool is not installed.
var ErrToolMissing = errors.New("drive listing tool not available")

// MountInfo describes one mounted volume.
type MountInfo struct {
	Path      string `json:"path"`
	FSType    string `json:"fstype"`
	Removable bool   `json:"removable"`
	Transport string `json:"transport"`
}

// Enumerator lists the currently mounted volumes. Implementations query the
// host on every call; results are not cached.
type Enumerator interface {
	Mounts(ctx context.Context) ([]MountInfo, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(ctx context.Context) ([]MountInfo, error)

func (f EnumeratorFunc) Mounts(ctx context.Context) ([]MountInfo, error) {
	return f(ctx)
}

// Static always returns the same mounts.
type Static []MountInfo

func (s Static) Mounts(context.Context) ([]MountInfo, error) {
	out := make([]MountInfo, len(s))
	copy(out, s)
	return out, nil
}
