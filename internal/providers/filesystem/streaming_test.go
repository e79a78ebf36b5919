package filesystem

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReadRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	content := strings.Repeat("0123456789abcdef", 1000) + "tail"
	writeFile(t, svc.Root(), "blob.bin", content)
	size := len(content)

	for _, chunk := range []int{1, 3, 7, 4096, size - 1, size, size + 1, 64 * 1024} {
		t.Run(fmt.Sprintf("chunk=%d", chunk), func(t *testing.T) {
			seq, err := svc.StreamRead(context.Background(), "blob.bin", chunk)
			require.NoError(t, err)

			var out bytes.Buffer
			count := 0
			for b, err := range seq {
				require.NoError(t, err)
				assert.LessOrEqual(t, len(b), chunk)
				out.Write(b)
				count++
			}

			assert.Equal(t, content, out.String())
			assert.Equal(t, (size+chunk-1)/chunk, count)
		})
	}
}

func TestStreamReadBinaryBlob(t *testing.T) {
	svc := newTestService(t, nil)
	blob := make([]byte, 3<<20 + 517)
	_, err := rand.Read(blob)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(svc.Root(), "blob.bin"), blob, 0o644))

	const chunk = 64*1024 + 3
	seq, err := svc.StreamRead(context.Background(), "blob.bin", chunk)
	require.NoError(t, err)

	var out bytes.Buffer
	count := 0
	for b, err := range seq {
		require.NoError(t, err)
		out.Write(b)
		count++
	}

	assert.True(t, bytes.Equal(blob, out.Bytes()), "streamed bytes differ")
	assert.Equal(t, (len(blob)+chunk-1)/chunk, count)
}

func TestStreamReadDefaultChunk(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "ten.txt", "0123456789")

	seq, err := svc.StreamRead(context.Background(), "ten.txt", 0)
	require.NoError(t, err)

	var chunks []string
	for b, err := range seq {
		require.NoError(t, err)
		chunks = append(chunks, string(b))
	}
	// newTestService configures a 4-byte default.
	assert.Equal(t, []string{"0123", "4567", "89"}, chunks)
}

func TestStreamReadEmptyFile(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "empty", "")

	seq, err := svc.StreamRead(context.Background(), "empty", 8)
	require.NoError(t, err)

	for range seq {
		t.Fatal("empty file must yield no chunks")
	}
}

func TestStreamReadEagerErrors(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "dir/x", "")

	_, err := svc.StreamRead(context.Background(), "missing", 8)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.StreamRead(context.Background(), "dir", 8)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestStreamReadSingleUseAndEarlyStop(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "data", "abcdefgh")

	seq, err := svc.StreamRead(context.Background(), "data", 2)
	require.NoError(t, err)

	for b, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "ab", string(b))
		break
	}

	var second error
	for _, err := range seq {
		second = err
	}
	assert.ErrorIs(t, second, ErrInvalidInput)
}

func TestStreamReadCancelled(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "data", "abcdefgh")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	seq, err := svc.StreamRead(ctx, "data", 2)
	require.NoError(t, err)

	var got []string
	var last error
	for b, err := range seq {
		if err != nil {
			last = err
			break
		}
		got = append(got, string(b))
		cancel()
	}
	assert.Equal(t, []string{"ab"}, got)
	assert.ErrorIs(t, last, context.Canceled)
}

func TestWriteHandle(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	writeFile(t, svc.Root(), "exists.txt", "x")

	_, err := svc.OpenWriteHandle(ctx, "exists.txt")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	w, err := svc.OpenWriteHandle(ctx, "uploads/new.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.Equal(t, int64(11), w.Written())
	assert.Equal(t, "hello world", readFile(t, filepath.Join(svc.Root(), "uploads", "new.bin")))

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestWriteHandleAbort(t *testing.T) {
	svc := newTestService(t, nil)

	w, err := svc.OpenWriteHandle(context.Background(), "partial.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("half"))
	require.NoError(t, err)

	require.NoError(t, w.Abort())
	assert.NoFileExists(t, w.Path())
}

func TestCopyStreamed(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	writeFile(t, svc.Root(), "src.bin", "streamed content")

	n, err := svc.CopyStreamed(ctx, "src.bin", "copies/dst.bin", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(len("streamed content")), n)
	assert.Equal(t, "streamed content", readFile(t, filepath.Join(svc.Root(), "copies", "dst.bin")))

	_, err = svc.CopyStreamed(ctx, "src.bin", "copies/dst.bin", 3)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.CopyStreamed(ctx, "nope.bin", "copies/other.bin", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCopyStreamedCancelledRemovesPartial(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "src.bin", "0123456789")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CopyStreamed(ctx, "src.bin", "dst.bin", 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(svc.Root(), "dst.bin"))
}
