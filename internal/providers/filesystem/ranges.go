package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ByteRange is an inclusive byte interval.
type ByteRange struct {
	Start int64
	End   int64
}

// Length is the number of bytes in the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range header value for a file of size.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// ParseByteRange parses a single-range Range header against a file size.
// Supported forms are "bytes=start-end", "bytes=start-" and "bytes=-suffix".
// An end past the file is clamped. A start at or past the end of the file is
// ErrRangeNotSatisfiable; anything unparseable is ErrInvalidInput.
func ParseByteRange(header string, size int64) (ByteRange, error) {
	rng, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok {
		return ByteRange{}, fmt.Errorf("%w: unsupported range unit", ErrInvalidInput)
	}
	if strings.Contains(rng, ",") {
		return ByteRange{}, fmt.Errorf("%w: multiple ranges are not supported", ErrInvalidInput)
	}

	first, last, ok := strings.Cut(strings.TrimSpace(rng), "-")
	if !ok {
		return ByteRange{}, fmt.Errorf("%w: malformed range", ErrInvalidInput)
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return ByteRange{}, fmt.Errorf("%w: malformed suffix range", ErrInvalidInput)
		}
		if size == 0 {
			return ByteRange{}, fmt.Errorf("%w: empty file", ErrRangeNotSatisfiable)
		}
		return ByteRange{Start: max(0, size-n), End: size - 1}, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, fmt.Errorf("%w: malformed range start", ErrInvalidInput)
	}

	end := size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return ByteRange{}, fmt.Errorf("%w: malformed range end", ErrInvalidInput)
		}
	}

	if start >= size {
		return ByteRange{}, fmt.Errorf("%w: start %d beyond size %d", ErrRangeNotSatisfiable, start, size)
	}
	if end > size-1 {
		end = size - 1
	}
	return ByteRange{Start: start, End: end}, nil
}

// RangeReader reads exactly one byte range of an open file. Close releases
// the file.
type RangeReader struct {
	*io.SectionReader
	ByteRange

	// Size is the full size of the file.
	Size    int64
	ModTime time.Time
	Path    string

	f *os.File
}

// OpenRange opens the file at path limited to the range named by
// rangeHeader. An empty header selects the whole file.
func (s *Service) OpenRange(ctx context.Context, path, rangeHeader string) (*RangeReader, error) {
	p, err := s.resolveFile(ctx, path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, mapOSError(err, p)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := info.Size()
	br := ByteRange{Start: 0, End: size - 1}
	if rangeHeader != "" {
		br, err = ParseByteRange(rangeHeader, size)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	return &RangeReader{
		SectionReader: io.NewSectionReader(f, br.Start, br.Length()),
		ByteRange:     br,
		Size:          size,
		ModTime:       info.ModTime(),
		Path:          p,
		f:             f,
	}, nil
}

func (r *RangeReader) Close() error {
	return r.f.Close()
}
