package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Object describes one file system entry as presented to clients. Directory
// entries carry ItemsCount; file entries carry Name, Extension, Size and Type.
type Object struct {
	Path       string  `json:"path"`
	IsDir      bool    `json:"isDir"`
	IsFile     bool    `json:"isFile"`
	IsHidden   bool    `json:"isHidden"`
	Directory  string  `json:"directory"`
	ItemsCount *int    `json:"itemsCount,omitempty"`
	Name       string  `json:"name,omitempty"`
	Extension  *string `json:"extension,omitempty"`
	Size       *int64  `json:"size,omitempty"`
	Type       string  `json:"type,omitempty"`

	ModTime time.Time `json:"-"`
}

// newObject stats p, following symlinks, but reports p itself so a link
// never reveals where it points. A dangling symlink yields an object that is
// neither a file nor a directory.
func newObject(p string) (Object, error) {
	info, err := os.Stat(p)
	if err != nil {
		linfo, lerr := os.Lstat(p)
		if lerr != nil {
			return Object{}, mapOSError(err, p)
		}
		info = linfo
	}

	name := filepath.Base(p)
	obj := Object{
		Path:      p,
		IsDir:     info.IsDir(),
		IsFile:    info.Mode().IsRegular(),
		IsHidden:  strings.HasPrefix(name, "."),
		Directory: filepath.Dir(p),
		ModTime:   info.ModTime(),
	}

	switch {
	case obj.IsDir:
		obj.Directory = p
		count := countEntries(p)
		obj.ItemsCount = &count
	case obj.IsFile:
		ext := strings.ToLower(filepath.Ext(name))
		size := info.Size()
		obj.Name = name
		obj.Extension = &ext
		obj.Size = &size
		obj.Type = Category(name)
	}
	return obj, nil
}

// countEntries returns the number of entries in dir; unreadable directories
// count as empty.
func countEntries(dir string) int {
	f, err := os.Open(dir)
	if err != nil {
		return 0
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return 0
	}
	return len(names)
}
