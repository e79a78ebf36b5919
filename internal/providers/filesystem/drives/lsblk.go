//go:build !windows

package drives

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var lsblkArgs = []string{"-J", "-o", "NAME,TYPE,RM,SIZE,MOUNTPOINT,FSTYPE,TRAN"}

// Lsblk enumerates block-device mounts with lsblk(8).
type Lsblk struct {
	logger *zap.Logger

	// OnlyAccessible drops mounts the process cannot read and traverse.
	OnlyAccessible bool

	run    func(ctx context.Context) ([]byte, error)
	access func(path string) error
}

// NewLsblk returns an enumerator that shells out to lsblk.
func NewLsblk(logger *zap.Logger) *Lsblk {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lsblk{
		logger:         logger,
		OnlyAccessible: true,
		run:            runLsblk,
		access: func(path string) error {
			return unix.Access(path, unix.R_OK|unix.X_OK)
		},
	}
}

// NewSystem returns the enumerator for the current platform.
func NewSystem(logger *zap.Logger) Enumerator {
	return NewLsblk(logger)
}

func runLsblk(ctx context.Context) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "lsblk", lsblkArgs...).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: lsblk", ErrToolMissing)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("lsblk failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("lsblk failed: %w", err)
	}
	return out, nil
}

// Mounts implements Enumerator.
func (l *Lsblk) Mounts(ctx context.Context) ([]MountInfo, error) {
	out, err := l.run(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := parseLsblk(out)
	if err != nil {
		return nil, err
	}

	mounts := make([]MountInfo, 0, len(devices))
	for _, dev := range devices {
		if l.OnlyAccessible {
			if err := l.access(dev.Path); err != nil {
				l.logger.Debug("skipping inaccessible mount", zap.String("mount", dev.Path), zap.Error(err))
				continue
			}
		}
		mounts = append(mounts, dev)
	}
	return mounts, nil
}

type lsblkOutput struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

type lsblkDevice struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	RM          flexBool      `json:"rm"`
	Size        string        `json:"size"`
	MountPoint  *string       `json:"mountpoint"`
	MountPoints []*string     `json:"mountpoints"`
	FSType      *string       `json:"fstype"`
	Tran        *string       `json:"tran"`
	Children    []lsblkDevice `json:"children"`
}

// flexBool accepts true/false as well as the "0"/"1" strings older lsblk
// releases emit.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "1":
		*b = true
	case "false", "0", "null", "":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (d lsblkDevice) mountPoint() string {
	if mp := deref(d.MountPoint); mp != "" {
		return mp
	}
	for _, mp := range d.MountPoints {
		if v := deref(mp); v != "" {
			return v
		}
	}
	return ""
}

// parseLsblk flattens the device tree into mounted, non-swap partitions and
// disks. Partitions inherit the transport of their parent disk.
func parseLsblk(data []byte) ([]MountInfo, error) {
	var out lsblkOutput
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse lsblk output: %w", err)
	}

	var mounts []MountInfo
	var walk func(devs []lsblkDevice, parentTran string)
	walk = func(devs []lsblkDevice, parentTran string) {
		for _, d := range devs {
			tran := deref(d.Tran)
			if tran == "" {
				tran = parentTran
			}
			walk(d.Children, tran)

			mount := d.mountPoint()
			if mount == "" || mount == "[SWAP]" {
				continue
			}
			if d.Type != "part" && d.Type != "disk" {
				continue
			}
			fstype := deref(d.FSType)
			if fstype == "swap" {
				continue
			}

			mounts = append(mounts, MountInfo{
				Path:      mount,
				FSType:    fstype,
				Removable: bool(d.RM) || tran == "usb" || tran == "mmc",
				Transport: tran,
			})
		}
	}
	walk(out.BlockDevices, "")

	return mounts, nil
}
