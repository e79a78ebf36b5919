package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
)

// StreamRead returns a single-use sequence of chunks of the file at path.
// The path is resolved and checked immediately; the file is opened on the
// first iteration and closed when the sequence ends or the consumer stops.
// Every chunk except the last is exactly chunkSize bytes, and a chunk is only
// valid until the next iteration step. chunkSize <= 0 selects the service
// default.
func (s *Service) StreamRead(ctx context.Context, path string, chunkSize int) (iter.Seq2[[]byte, error], error) {
	p, err := s.resolveFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}

	var used atomic.Bool
	return func(yield func([]byte, error) bool) {
		if used.Swap(true) {
			yield(nil, fmt.Errorf("%w: stream already consumed", ErrInvalidInput))
			return
		}

		f, err := os.Open(p)
		if err != nil {
			yield(nil, mapOSError(err, p))
			return
		}
		defer f.Close()

		buf := make([]byte, chunkSize)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			n, err := io.ReadFull(f, buf)
			if n > 0 && !yield(buf[:n], nil) {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}, nil
}

// WriteHandle is an exclusive sink for a file that did not exist when it was
// opened. It is not safe for concurrent use.
type WriteHandle struct {
	f       *os.File
	path    string
	written int64
	closed  bool
}

// OpenWriteHandle creates path (and its parents) for writing. It fails with
// ErrAlreadyExists if anything is already there.
func (s *Service) OpenWriteHandle(ctx context.Context, path string) (*WriteHandle, error) {
	p, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	if exists(p) {
		return nil, existsError(p)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, mapOSError(err, p)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, mapOSError(err, p)
	}
	return &WriteHandle{f: f, path: p}, nil
}

func (w *WriteHandle) Write(b []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	n, err := w.f.Write(b)
	w.written += int64(n)
	return n, err
}

// Close flushes and closes the file. Calling it again is a no-op.
func (w *WriteHandle) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}

// Abort closes the handle and removes the partial file.
func (w *WriteHandle) Abort() error {
	closeErr := w.Close()
	if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return closeErr
}

// Path returns the resolved destination.
func (w *WriteHandle) Path() string {
	return w.path
}

// Written returns the number of bytes written so far.
func (w *WriteHandle) Written() int64 {
	return w.written
}

// CopyStreamed copies the file at src to a new file at dst chunk by chunk.
// On failure or cancellation the partial destination is removed.
func (s *Service) CopyStreamed(ctx context.Context, src, dst string, chunkSize int) (int64, error) {
	chunks, err := s.StreamRead(ctx, src, chunkSize)
	if err != nil {
		return 0, err
	}
	w, err := s.OpenWriteHandle(ctx, dst)
	if err != nil {
		return 0, err
	}

	for chunk, err := range chunks {
		if err == nil {
			_, err = w.Write(chunk)
		}
		if err != nil {
			if abortErr := w.Abort(); abortErr != nil {
				s.logger.Warn("failed to remove partial copy", zap.String("path", w.Path()), zap.Error(abortErr))
			}
			return w.Written(), err
		}
	}

	if err := w.Close(); err != nil {
		return w.Written(), err
	}
	return w.Written(), nil
}
