// Package paths provides host path conventions shared by the sandbox.
//
// # External Storage
//
// On Linux hosts removable and secondary drives are conventionally mounted
// under one of:
//
//	/mnt/
//	/media/
//	/var/media/
//	/var/mnt/
//
// Paths under these roots are reachable even when they are outside the
// configured sandbox root.
//
// # Usage
//
//	if paths.Within(root, p) || paths.IsExternalPath(p) {
//	    // allowed
//	}
//
//	if err := paths.ValidateName(newName); err != nil {
//	    // reject rename
//	}
package paths
