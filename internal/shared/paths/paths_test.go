package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithin(t *testing.T) {
	tests := []struct {
		root, p string
		want    bool
	}{
		{"/home/deck", "/home/deck", true},
		{"/home/deck", "/home/deck/Music/a.mp3", true},
		{"/home/deck", "/home/deckard", false},
		{"/home/deck", "/home", false},
		{"/home/deck", "/etc/passwd", false},
		{"/home/deck", "/home/deck/..foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.p, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(tt.root, tt.p))
		})
	}
}

func TestIsExternalPath(t *testing.T) {
	assert.True(t, IsExternalPath("/mnt"))
	assert.True(t, IsExternalPath("/media/usb/photos"))
	assert.True(t, IsExternalPath("/var/mnt/sd"))
	assert.False(t, IsExternalPath("/var"))
	assert.False(t, IsExternalPath("/mntx/data"))
	assert.False(t, IsExternalPath("/etc"))
}

func TestAncestors(t *testing.T) {
	assert.Equal(t, []string{"/run/media/deck/sd", "/run/media/deck", "/run/media", "/run", "/"}, Ancestors("/run/media/deck/sd"))
	assert.Equal(t, []string{"/"}, Ancestors("/"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("report.pdf"))
	assert.NoError(t, ValidateName(".hidden"))

	for _, bad := range []string{"", ".", "..", "a/b", `a\b`, "a\x00b"} {
		assert.Error(t, ValidateName(bad), bad)
	}
}
