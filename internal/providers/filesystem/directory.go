package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// List returns the directory itself and its entries sorted by name.
func (s *Service) List(ctx context.Context, path string) (Object, []Object, error) {
	dir, err := s.resolveDir(ctx, path)
	if err != nil {
		return Object{}, nil, err
	}

	self, err := newObject(dir)
	if err != nil {
		return Object{}, nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Object{}, nil, mapOSError(err, dir)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Object{}, nil, err
		}
		obj, err := newObject(filepath.Join(dir, e.Name()))
		if err != nil {
			// Removed between ReadDir and Stat.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Object{}, nil, err
		}
		objects = append(objects, obj)
	}
	return self, objects, nil
}

// Object describes the entry at path.
func (s *Service) Object(ctx context.Context, path string) (Object, error) {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return Object{}, err
	}
	return newObject(p)
}

// CreateDir creates path and any missing parents.
func (s *Service) CreateDir(ctx context.Context, path string) error {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return err
	}
	if exists(p) {
		return existsError(p)
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return mapOSError(err, p)
	}

	s.logger.Info("directory created", zap.String("path", p))
	return nil
}

// DeleteDir removes a directory tree. The sandbox root cannot be removed.
func (s *Service) DeleteDir(ctx context.Context, path string) error {
	p, err := s.resolveDir(ctx, path)
	if err != nil {
		return err
	}
	return s.removeTree(p)
}

// CreateFile writes data to path, creating parents and replacing an
// existing file.
func (s *Service) CreateFile(ctx context.Context, path string, data []byte) error {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return err
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrWrongKind, filepath.Base(p))
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return mapOSError(err, p)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return mapOSError(err, p)
	}

	s.logger.Info("file created", zap.String("path", p), zap.Int("size", len(data)))
	return nil
}

// DeleteFile removes a single non-directory entry.
func (s *Service) DeleteFile(ctx context.Context, path string) error {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return err
	}
	info, err := os.Lstat(p)
	if err != nil {
		return mapOSError(err, p)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrWrongKind, filepath.Base(p))
	}
	if err := os.Remove(p); err != nil {
		return mapOSError(err, p)
	}

	s.logger.Info("file deleted", zap.String("path", p))
	return nil
}

// Delete removes path whatever its kind.
func (s *Service) Delete(ctx context.Context, path string) error {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return err
	}
	info, err := os.Lstat(p)
	if err != nil {
		return mapOSError(err, p)
	}
	if info.IsDir() {
		return s.removeTree(p)
	}
	if err := os.Remove(p); err != nil {
		return mapOSError(err, p)
	}

	s.logger.Info("file deleted", zap.String("path", p))
	return nil
}

// Rename gives the entry at path a new name in the same directory.
func (s *Service) Rename(ctx context.Context, path, newName string) error {
	if err := validateName(newName); err != nil {
		return err
	}

	src, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return err
	}
	if src == s.root {
		return fmt.Errorf("%w: cannot rename the base directory", ErrForbidden)
	}
	if _, err := os.Lstat(src); err != nil {
		return mapOSError(err, src)
	}

	dst, err := s.resolver.Resolve(ctx, filepath.Join(filepath.Dir(src), newName))
	if err != nil {
		return err
	}
	if exists(dst) {
		return existsError(dst)
	}
	if err := os.Rename(src, dst); err != nil {
		return mapOSError(err, src)
	}

	s.logger.Info("renamed", zap.String("from", src), zap.String("to", dst))
	return nil
}

func (s *Service) removeTree(p string) error {
	if p == s.root {
		return fmt.Errorf("%w: cannot delete the base directory", ErrForbidden)
	}
	if err := os.RemoveAll(p); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return mapOSError(err, p)
		}
		return err
	}

	s.logger.Info("directory deleted", zap.String("path", p))
	return nil
}
