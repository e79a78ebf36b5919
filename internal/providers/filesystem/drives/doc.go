// Package drives enumerates mounted volumes.
//
// On Linux and other unix hosts the Lsblk enumerator parses the JSON output
// of lsblk(8), keeping mounted partitions and disks that are not swap and
// that the process can read and traverse. On Windows the Volumes enumerator
// walks the logical drive letters. Guarded puts either behind a circuit
// breaker; Static serves fixed mounts in tests and for hosts without a
// listing tool.
package drives
