package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem/drives"
	"go.uber.org/zap"
)

// DefaultChunkSize is the read size for streamed transfers.
const DefaultChunkSize = 64 * 1024

// Config configures a Service.
type Config struct {
	// Root is the sandbox root; it must exist and be a directory.
	Root string
	// ChunkSize for StreamRead and CopyStreamed when the caller passes 0.
	ChunkSize int
	// Drives lists mounted volumes for the mount-tree guard. Nil disables
	// the mount table lookup.
	Drives drives.Enumerator
	// MountPatterns are extra doublestar patterns for external mount roots.
	MountPatterns []string
	Logger        *zap.Logger
}

// Service performs file operations confined to a sandbox root.
type Service struct {
	root      string
	resolver  *Resolver
	chunkSize int
	logger    *zap.Logger
}

// New validates the root and builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: root is required", ErrInvalidInput)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("base directory does not exist: %w", mapOSError(err, cfg.Root))
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, mapOSError(err, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: base directory is not a directory", ErrWrongKind)
	}

	resolver, err := NewResolver(root, cfg.Drives, cfg.MountPatterns)
	if err != nil {
		return nil, err
	}

	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		root:      root,
		resolver:  resolver,
		chunkSize: chunk,
		logger:    logger,
	}, nil
}

// Root returns the resolved sandbox root.
func (s *Service) Root() string {
	return s.root
}

// Resolve exposes the sandbox resolver.
func (s *Service) Resolve(ctx context.Context, path string) (string, error) {
	return s.resolver.Resolve(ctx, path)
}

// ChunkSize returns the default transfer chunk size.
func (s *Service) ChunkSize() int {
	return s.chunkSize
}

// resolveFile resolves path and requires a regular file.
func (s *Service) resolveFile(ctx context.Context, path string) (string, error) {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", mapOSError(err, p)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrWrongKind, filepath.Base(p))
	}
	return p, nil
}

// resolveDir resolves path and requires a directory.
func (s *Service) resolveDir(ctx context.Context, path string) (string, error) {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", mapOSError(err, p)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrWrongKind, filepath.Base(p))
	}
	return p, nil
}

// mapOSError folds OS errors into the package taxonomy without leaking the
// full path.
func mapOSError(err error, p string) error {
	name := filepath.Base(p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: permission denied", ErrForbidden)
	case errors.Is(err, fs.ErrExist):
		return existsError(p)
	default:
		return err
	}
}

// existsError reads "<name> already exists".
func existsError(p string) error {
	return fmt.Errorf("%s %w", filepath.Base(p), ErrAlreadyExists)
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
