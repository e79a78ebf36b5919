// Package filesystem implements sandboxed file operations for remote
// clients.
//
// Every caller-supplied path goes through a Resolver: relative paths are
// joined under the sandbox root, symlinks are resolved on the deepest
// existing ancestor, and a platform guard decides whether the result may be
// touched. On unix hosts the guard allows the root, the conventional
// external mount roots (/mnt, /media, /var/media, /var/mnt), configured
// mount patterns and any volume currently reported by the drive enumerator.
// On Windows it forbids the system drive outside the root.
//
// Service builds on the resolver:
//   - List, Object, CreateDir, DeleteDir, CreateFile, DeleteFile, Delete
//   - Copy, Move (explicit overwrite), Rename
//   - StreamRead (lazy chunk sequence), OpenWriteHandle, CopyStreamed
//   - OpenRange and ParseByteRange for partial content
//   - StreamZip for in-memory archives
//   - ContentType with charset detection for text
//
// Errors wrap one of the sentinels in errors.go.
//
// There is no locking between calls on the same path; concurrent writers
// race and the last one wins.
package filesystem
