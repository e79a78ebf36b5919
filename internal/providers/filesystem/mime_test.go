package filesystem

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"notes.txt":    "text",
		"README.MD":    "text",
		"photo.JPG":    "image",
		"clip.mkv":     "video",
		"song.flac":    "audio",
		"archive.zip":  "application",
		"Makefile":     "unknown",
		"weird.zzzzzz": "unknown",
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Category(name))
		})
	}
}

func TestContentType(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	writeFile(t, svc.Root(), "hello.txt", "hello, world\n")
	writeFile(t, svc.Root(), "page.html", "<p>hi</p>")
	// PNG signature with no extension: detected from content.
	writeFile(t, svc.Root(), "image", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	writeFile(t, svc.Root(), "dir/x", "")

	ct, err := svc.ContentType(ctx, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", ct)

	ct, err = svc.ContentType(ctx, "page.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "text/html; charset="), ct)

	ct, err = svc.ContentType(ctx, "image")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = svc.ContentType(ctx, "dir")
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestDetectCharsetNonUTF8(t *testing.T) {
	svc := newTestService(t, nil)
	// Windows-1252 / Latin-1 encoded French text.
	latin := "Le caf\xe9 est tr\xe8s chaud et la cr\xe8me br\xfbl\xe9e est d\xe9licieuse. " +
		"Nous avons mang\xe9 \xe0 la fen\xeatre pr\xe8s de la for\xeat."
	p := writeFile(t, svc.Root(), "latin.txt", strings.Repeat(latin, 4))

	cs := detectCharset(p)
	assert.NotEqual(t, "utf-8", cs)
	assert.NotEmpty(t, cs)
}
