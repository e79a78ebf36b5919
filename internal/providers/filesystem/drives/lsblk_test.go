//go:build !windows

package drives

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const steamDeckLsblk = `{
   "blockdevices": [
      {"name":"mmcblk0", "type":"disk", "rm":true, "size":"476.7G", "mountpoint":null, "fstype":null, "tran":"mmc",
         "children": [
            {"name":"mmcblk0p1", "type":"part", "rm":true, "size":"476.7G", "mountpoint":"/run/media/deck/sdcard", "fstype":"ext4", "tran":null}
         ]
      },
      {"name":"nvme0n1", "type":"disk", "rm":false, "size":"476.9G", "mountpoint":null, "fstype":null, "tran":"nvme",
         "children": [
            {"name":"nvme0n1p1", "type":"part", "rm":false, "size":"64M", "mountpoint":"/esp", "fstype":"vfat", "tran":null},
            {"name":"nvme0n1p7", "type":"part", "rm":false, "size":"8G", "mountpoint":"[SWAP]", "fstype":"swap", "tran":null},
            {"name":"nvme0n1p8", "type":"part", "rm":false, "size":"400G", "mountpoint":"/home", "fstype":"ext4", "tran":null}
         ]
      },
      {"name":"loop0", "type":"loop", "rm":false, "size":"4G", "mountpoint":"/var/lib/snap", "fstype":"squashfs", "tran":null},
      {"name":"sda", "type":"disk", "rm":"0", "size":"1T", "mountpoint":null, "fstype":null, "tran":"usb",
         "children": [
            {"name":"sda1", "type":"part", "rm":"0", "size":"1T", "mountpoint":"/media/backup", "fstype":"exfat", "tran":null}
         ]
      }
   ]
}`

func TestParseLsblk(t *testing.T) {
	mounts, err := parseLsblk([]byte(steamDeckLsblk))
	require.NoError(t, err)

	assert.Equal(t, []MountInfo{
		{Path: "/run/media/deck/sdcard", FSType: "ext4", Removable: true, Transport: "mmc"},
		{Path: "/esp", FSType: "vfat", Removable: false, Transport: "nvme"},
		{Path: "/home", FSType: "ext4", Removable: false, Transport: "nvme"},
		{Path: "/media/backup", FSType: "exfat", Removable: true, Transport: "usb"},
	}, mounts)
}

func TestParseLsblkMountpointsArray(t *testing.T) {
	data := `{"blockdevices":[{"name":"sdb1","type":"part","rm":"1","mountpoints":[null,"/mnt/usb"],"fstype":"vfat","tran":null}]}`

	mounts, err := parseLsblk([]byte(data))
	require.NoError(t, err)
	require.Len(t, mounts, 1)
	assert.Equal(t, "/mnt/usb", mounts[0].Path)
	assert.True(t, mounts[0].Removable)
}

func TestParseLsblkInvalid(t *testing.T) {
	_, err := parseLsblk([]byte(`{"blockdevices": [`))
	assert.Error(t, err)

	_, err = parseLsblk([]byte(`{"blockdevices":[{"name":"x","rm":"maybe"}]}`))
	assert.Error(t, err)
}

func TestLsblkMountsFiltersInaccessible(t *testing.T) {
	l := NewLsblk(zap.NewNop())
	l.run = func(context.Context) ([]byte, error) { return []byte(steamDeckLsblk), nil }
	l.access = func(path string) error {
		if path == "/esp" {
			return errors.New("permission denied")
		}
		return nil
	}

	mounts, err := l.Mounts(context.Background())
	require.NoError(t, err)

	var got []string
	for _, m := range mounts {
		got = append(got, m.Path)
	}
	assert.Equal(t, []string{"/run/media/deck/sdcard", "/home", "/media/backup"}, got)

	l.OnlyAccessible = false
	mounts, err = l.Mounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, mounts, 4)
}

func TestLsblkToolMissing(t *testing.T) {
	l := NewLsblk(nil)
	l.run = func(context.Context) ([]byte, error) { return nil, ErrToolMissing }

	_, err := l.Mounts(context.Background())
	assert.ErrorIs(t, err, ErrToolMissing)
}
