package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/GriffinCanCode/filedeck/internal/shared/paths"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

func validateName(name string) error {
	if err := paths.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Copy copies src to dst. Directories are copied as a whole tree; files keep
// their mode and modification time. An existing dst is an error unless
// overwrite is set, in which case it is removed first.
func (s *Service) Copy(ctx context.Context, src, dst string, overwrite bool) error {
	from, to, info, err := s.prepareTransfer(ctx, src, dst, overwrite)
	if err != nil {
		return err
	}

	if err := s.copyPath(ctx, from, to, info); err != nil {
		return err
	}

	s.logger.Info("copied", zap.String("from", from), zap.String("to", to))
	return nil
}

// Move moves src to dst with the same conflict rules as Copy. Across
// devices it falls back to copy and remove, which is not atomic.
func (s *Service) Move(ctx context.Context, src, dst string, overwrite bool) error {
	from, to, info, err := s.prepareTransfer(ctx, src, dst, overwrite)
	if err != nil {
		return err
	}

	err = os.Rename(from, to)
	if errors.Is(err, syscall.EXDEV) {
		s.logger.Debug("cross-device move, copying", zap.String("from", from), zap.String("to", to))
		if err = s.copyPath(ctx, from, to, info); err == nil {
			err = os.RemoveAll(from)
		}
	}
	if err != nil {
		return mapOSError(err, from)
	}

	s.logger.Info("moved", zap.String("from", from), zap.String("to", to))
	return nil
}

// prepareTransfer resolves both ends, applies the conflict policy and
// creates the destination's parent.
func (s *Service) prepareTransfer(ctx context.Context, src, dst string, overwrite bool) (string, string, fs.FileInfo, error) {
	from, err := s.resolver.Resolve(ctx, src)
	if err != nil {
		return "", "", nil, err
	}
	to, err := s.resolver.Resolve(ctx, dst)
	if err != nil {
		return "", "", nil, err
	}

	info, err := os.Lstat(from)
	if err != nil {
		return "", "", nil, mapOSError(err, from)
	}
	if from == s.root || to == s.root {
		return "", "", nil, fmt.Errorf("%w: the base directory cannot be replaced or relocated", ErrForbidden)
	}
	if from == to {
		return "", "", nil, fmt.Errorf("%w: source and destination are the same", ErrInvalidInput)
	}
	if info.IsDir() && paths.Within(from, to) {
		return "", "", nil, fmt.Errorf("%w: cannot copy or move a directory into itself", ErrInvalidInput)
	}
	if paths.Within(to, from) {
		return "", "", nil, fmt.Errorf("%w: destination contains the source", ErrInvalidInput)
	}

	if exists(to) {
		if !overwrite {
			return "", "", nil, existsError(to)
		}
		if err := os.RemoveAll(to); err != nil {
			return "", "", nil, mapOSError(err, to)
		}
	}

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return "", "", nil, mapOSError(err, to)
	}
	return from, to, info, nil
}

func (s *Service) copyPath(ctx context.Context, from, to string, info fs.FileInfo) error {
	switch {
	case info.IsDir():
		return s.copyTree(ctx, from, to)
	case info.Mode()&fs.ModeSymlink != 0:
		return s.copySymlink(ctx, "", from, to)
	default:
		return copyFile(ctx, from, to, info)
	}
}

type treeEntry struct {
	rel  string
	mode fs.FileMode
}

// copyTree replicates the tree under from at to. Symlinks are recreated,
// not followed; sockets and devices are skipped.
func (s *Service) copyTree(ctx context.Context, from, to string) error {
	var (
		mu      sync.Mutex
		entries []treeEntry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, from, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == from {
			return nil
		}

		rel, err := filepath.Rel(from, p)
		if err != nil {
			return err
		}

		mu.Lock()
		entries = append(entries, treeEntry{rel: rel, mode: d.Type()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return mapOSError(err, from)
	}

	// Parents sort before their children.
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	rootInfo, err := os.Stat(from)
	if err != nil {
		return mapOSError(err, from)
	}
	if err := os.MkdirAll(to, rootInfo.Mode().Perm()|0o700); err != nil {
		return mapOSError(err, to)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := filepath.Join(from, e.rel)
		dst := filepath.Join(to, e.rel)

		switch {
		case e.mode.IsDir():
			info, err := os.Lstat(src)
			if err != nil {
				return mapOSError(err, src)
			}
			if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
				return mapOSError(err, dst)
			}
		case e.mode&fs.ModeSymlink != 0:
			if err := s.copySymlink(ctx, from, src, dst); err != nil {
				return err
			}
		case e.mode.IsRegular():
			info, err := os.Lstat(src)
			if err != nil {
				return mapOSError(err, src)
			}
			if err := copyFile(ctx, src, dst, info); err != nil {
				return err
			}
		}
	}
	return nil
}

// copySymlink recreates the link at from as to. Links into the copied tree
// keep their target verbatim so they point into the copy. Relative links to
// anything else are rewritten to name the same target from the new
// location, and links whose target the guard rejects are skipped.
func (s *Service) copySymlink(ctx context.Context, tree, from, to string) error {
	target, err := os.Readlink(from)
	if err != nil {
		return mapOSError(err, from)
	}

	abs := target
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(filepath.Dir(from), target)
	}

	if !paths.Within(tree, abs) {
		resolved, err := evalExisting(abs)
		if err != nil {
			return err
		}
		if err := s.resolver.guard.allow(ctx, resolved); err != nil {
			if !errors.Is(err, ErrForbidden) {
				return err
			}
			s.logger.Warn("skipping symlink that leaves the sandbox", zap.String("link", from))
			return nil
		}
		if !filepath.IsAbs(target) {
			if rel, err := filepath.Rel(filepath.Dir(to), abs); err == nil {
				target = rel
			}
		}
	}

	if err := os.Symlink(target, to); err != nil {
		return mapOSError(err, to)
	}
	return nil
}

// copyFile copies contents, permission bits and modification time.
func copyFile(ctx context.Context, from, to string, info fs.FileInfo) error {
	in, err := os.Open(from)
	if err != nil {
		return mapOSError(err, from)
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return mapOSError(err, to)
	}

	if _, err := copyChunks(ctx, out, in, make([]byte, DefaultChunkSize)); err != nil {
		out.Close()
		os.Remove(to)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile honours the umask; restore the source bits explicitly.
	if err := os.Chmod(to, info.Mode().Perm()); err != nil {
		return mapOSError(err, to)
	}
	return os.Chtimes(to, info.ModTime(), info.ModTime())
}

// copyChunks copies r to w through buf, checking ctx between chunks.
func copyChunks(ctx context.Context, w io.Writer, r io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
