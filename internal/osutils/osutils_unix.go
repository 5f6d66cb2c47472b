//go:build linux || darwin

package osutils

import "golang.org/x/sys/unix"

// IsAdmin reports whether the process runs as root
func IsAdmin() bool {
	return unix.Geteuid() == 0
}
