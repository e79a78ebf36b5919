//go:build windows

package drives

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// Volumes enumerates drive letters through the Win32 API.
type Volumes struct {
	logger *zap.Logger
}

// NewSystem returns the enumerator for the current platform.
func NewSystem(logger *zap.Logger) Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Volumes{logger: logger}
}

// Mounts implements Enumerator.
func (v *Volumes) Mounts(ctx context.Context) ([]MountInfo, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}

	var mounts []MountInfo
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root := string(rune('A'+i)) + `:\`
		ptr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}

		kind := windows.GetDriveType(ptr)
		if kind == windows.DRIVE_UNKNOWN || kind == windows.DRIVE_NO_ROOT_DIR {
			continue
		}

		removable := kind == windows.DRIVE_REMOVABLE
		transport := "internal"
		if removable {
			transport = "usb"
		}

		mounts = append(mounts, MountInfo{
			Path:      root,
			Removable: removable,
			Transport: transport,
		})
	}
	return mounts, nil
}
