package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem/drives"
	"github.com/GriffinCanCode/filedeck/internal/shared/paths"
	"github.com/bmatcuk/doublestar/v4"
)

// guard decides whether a resolved absolute path may be accessed.
type guard interface {
	allow(ctx context.Context, p string) error
}

// Resolver maps caller-supplied paths to absolute paths inside the sandbox.
// It never caches: every call re-reads symlinks and, when needed, the mount
// table.
type Resolver struct {
	root  string
	guard guard
}

// NewResolver creates a resolver for root, which must already be an absolute,
// symlink-free path. The platform guard is chosen from runtime.GOOS.
func NewResolver(root string, enum drives.Enumerator, mountPatterns []string) (*Resolver, error) {
	for _, pat := range mountPatterns {
		if !doublestar.ValidatePathPattern(pat) {
			return nil, fmt.Errorf("%w: bad mount pattern %q", ErrInvalidInput, pat)
		}
	}

	var g guard
	if runtime.GOOS == "windows" {
		g = newDriveLetterGuard(root)
	} else {
		g = &mountTreeGuard{root: root, patterns: mountPatterns, drives: enum}
	}
	return &Resolver{root: root, guard: g}, nil
}

// Root returns the sandbox root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve normalizes userPath, resolves symlinks and applies the platform
// guard. Paths that do not exist yet resolve through their deepest existing
// ancestor.
func (r *Resolver) Resolve(ctx context.Context, userPath string) (string, error) {
	if userPath == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	if strings.HasPrefix(userPath, "~") {
		return "", fmt.Errorf("%w: home expansion is not allowed", ErrInvalidInput)
	}

	p := userPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, p)
	}
	p = filepath.Clean(p)

	resolved, err := evalExisting(p)
	if err != nil {
		return "", err
	}

	if err := r.guard.allow(ctx, resolved); err != nil {
		return "", err
	}
	return resolved, nil
}

// maxLinkHops bounds how many dangling links evalExisting follows.
const maxLinkHops = 40

// evalExisting resolves symlinks on the longest existing prefix of p and
// re-appends the missing tail. A dangling link resolves to where its target
// would be, so creating through it is judged by the target's location.
func evalExisting(p string) (string, error) {
	return evalLinks(p, 0)
}

func evalLinks(p string, hops int) (string, error) {
	var tail []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return joinTail(resolved, tail), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission) && !errors.Is(err, syscall.ENOTDIR) {
			return "", fmt.Errorf("resolve path: %w", err)
		}

		if target, lerr := os.Readlink(cur); lerr == nil {
			if hops >= maxLinkHops {
				return "", fmt.Errorf("%w: too many levels of symbolic links", ErrInvalidInput)
			}
			if !filepath.IsAbs(target) {
				dir, err := filepath.EvalSymlinks(filepath.Dir(cur))
				if err != nil {
					return "", fmt.Errorf("resolve path: %w", err)
				}
				target = filepath.Join(dir, target)
			}
			return evalLinks(joinTail(filepath.Clean(target), tail), hops+1)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// joinTail appends tail, which holds path elements in reverse order, to p.
func joinTail(p string, tail []string) string {
	for i := len(tail) - 1; i >= 0; i-- {
		p = filepath.Join(p, tail[i])
	}
	return p
}

// mountTreeGuard allows the sandbox root, the conventional external mount
// roots, configured mount patterns and currently mounted drives.
type mountTreeGuard struct {
	root     string
	patterns []string
	drives   drives.Enumerator
}

func (g *mountTreeGuard) allow(ctx context.Context, p string) error {
	if paths.Within(g.root, p) || paths.IsExternalPath(p) {
		return nil
	}

	for _, anc := range paths.Ancestors(p) {
		for _, pat := range g.patterns {
			if ok, _ := doublestar.PathMatch(pat, anc); ok {
				return nil
			}
		}
	}

	if g.drives == nil {
		return ErrForbidden
	}

	mounts, err := g.drives.Mounts(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	for _, m := range mounts {
		mp := filepath.Clean(m.Path)
		// The system root is always mounted; it does not make a path external.
		if mp == "/" || !filepath.IsAbs(mp) {
			continue
		}
		if paths.Within(mp, p) {
			return nil
		}
	}
	return ErrForbidden
}

// driveLetterGuard forbids the system drive outside the sandbox root and
// allows every other volume.
type driveLetterGuard struct {
	root        string
	systemDrive string
}

func newDriveLetterGuard(root string) *driveLetterGuard {
	sys := os.Getenv("SystemDrive")
	if sys == "" {
		sys = paths.DefaultSystemDrive
	}
	return &driveLetterGuard{root: root, systemDrive: strings.ToUpper(sys)}
}

func (g *driveLetterGuard) allow(_ context.Context, p string) error {
	if strings.EqualFold(volumeName(p), g.systemDrive) && !paths.Within(g.root, p) {
		return ErrForbidden
	}
	return nil
}

// volumeName returns the "X:" drive of p. It parses the prefix itself so the
// guard behaves the same on every build platform.
func volumeName(p string) string {
	if len(p) >= 2 && p[1] == ':' {
		c := p[0] | 0x20
		if c >= 'a' && c <= 'z' {
			return strings.ToUpper(p[:2])
		}
	}
	return filepath.VolumeName(p)
}
