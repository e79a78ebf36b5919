package filesystem

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
)

// StreamZip builds a deflated zip of paths in memory. Files are stored under
// their base name; directories contribute every regular file below them,
// named relative to the directory's parent ("docs/a.txt"). Empty
// directories are not recorded.
func (s *Service) StreamZip(ctx context.Context, paths []string) (*bytes.Buffer, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: nothing to archive", ErrInvalidInput)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	a := &archiver{zw: zw, resolver: s.resolver, logger: s.logger, names: make(map[string]int)}
	for _, userPath := range paths {
		p, err := s.resolver.Resolve(ctx, userPath)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, mapOSError(err, p)
		}

		if info.IsDir() {
			err = a.addDir(ctx, p)
		} else {
			err = a.addFile(p, filepath.Base(p), info)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	s.logger.Debug("archive assembled",
		zap.Int("inputs", len(paths)),
		zap.Int("entries", a.entries),
		zap.Int("bytes", buf.Len()),
	)
	return buf, nil
}

type archiver struct {
	zw       *zip.Writer
	resolver *Resolver
	logger   *zap.Logger
	names    map[string]int
	entries  int
}

func (a *archiver) addDir(ctx context.Context, dir string) error {
	base := filepath.Dir(dir)

	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return mapOSError(err, dir)
	}

	sort.Strings(files)
	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Symlinked files are followed only where the resolver allows;
		// links to directories are skipped.
		target, err := a.resolver.Resolve(ctx, p)
		if errors.Is(err, ErrForbidden) {
			a.logger.Warn("skipping archive entry outside the sandbox", zap.String("path", p))
			continue
		}
		if err != nil {
			return err
		}
		info, err := os.Stat(target)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		if err := a.addFile(target, filepath.ToSlash(rel), info); err != nil {
			return err
		}
	}
	return nil
}

func (a *archiver) addFile(p, name string, info fs.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = a.uniqueName(name)
	hdr.Method = zip.Deflate

	w, err := a.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	f, err := os.Open(p)
	if err != nil {
		return mapOSError(err, p)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return err
	}
	a.entries++
	return nil
}

// uniqueName suffixes repeated entry names: "a.txt", "a (1).txt".
func (a *archiver) uniqueName(name string) string {
	n := a.names[name]
	a.names[name] = n + 1
	if n == 0 {
		return name
	}

	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
	if _, taken := a.names[candidate]; taken {
		return a.uniqueName(candidate)
	}
	a.names[candidate] = 1
	return candidate
}
