package filesystem

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// sniffLen is how much of a text file is fed to charset detection.
const sniffLen = 4096

// extensionTypes is consulted before the platform mime database so that
// results do not depend on the host's /etc/mime.types.
var extensionTypes = map[string]string{
	".txt":  "text/plain",
	".log":  "text/plain",
	".ini":  "text/plain",
	".cfg":  "text/plain",
	".conf": "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".mjs":  "text/javascript",
	".py":   "text/x-python",
	".go":   "text/x-go",
	".sh":   "text/x-shellscript",
	".vdf":  "text/plain",
	".json": "application/json",
	".xml":  "application/xml",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".toml": "application/toml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".7z":   "application/x-7z-compressed",
	".rar":  "application/vnd.rar",
	".iso":  "application/x-iso9660-image",
	".exe":  "application/vnd.microsoft.portable-executable",
	".apk":  "application/vnd.android.package-archive",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".avif": "image/avif",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

// TypeForName guesses a media type from a file name alone. It returns ""
// when the extension is unknown.
func TypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	return ""
}

// Category returns the top-level media type for a file name ("text",
// "image", "video", "audio", "application") or "unknown".
func Category(name string) string {
	t := TypeForName(name)
	if t == "" {
		return "unknown"
	}
	major, _, _ := strings.Cut(t, "/")
	return major
}

// ContentType returns the media type of the file at path. The extension
// decides when known; otherwise the content is sniffed. Text types carry a
// detected charset.
func (s *Service) ContentType(ctx context.Context, path string) (string, error) {
	p, err := s.resolveFile(ctx, path)
	if err != nil {
		return "", err
	}
	return contentTypeOf(p)
}

func contentTypeOf(p string) (string, error) {
	t := TypeForName(p)
	if t == "" {
		mt, err := mimetype.DetectFile(p)
		if err != nil {
			return "", mapOSError(err, p)
		}
		t = mt.String()
	}

	mediaType, params, err := mime.ParseMediaType(t)
	if err != nil {
		return "application/octet-stream", nil
	}
	if !strings.HasPrefix(mediaType, "text/") {
		return mediaType, nil
	}
	if params == nil {
		params = map[string]string{}
	}
	if params["charset"] == "" {
		params["charset"] = detectCharset(p)
	}
	return mime.FormatMediaType(mediaType, params), nil
}

// detectCharset guesses the encoding of the start of a text file, defaulting
// to utf-8.
func detectCharset(p string) string {
	f, err := os.Open(p)
	if err != nil {
		return "utf-8"
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, head)
	if n == 0 {
		return "utf-8"
	}

	if validUTF8Prefix(head[:n]) {
		return "utf-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(head[:n])
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// validUTF8Prefix tolerates a rune cut off by the sniff window.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return false
}
