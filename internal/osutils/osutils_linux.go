//go:build linux

package osutils

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// inputGlob matches the evdev nodes read by the Linux hook
var inputGlob = "/dev/input/event*"

// AccessHint explains why the input hooks may miss events, or returns "".
func AccessHint() string {
	nodes, err := filepath.Glob(inputGlob)
	if err != nil || len(nodes) == 0 {
		return "no /dev/input/event* devices found"
	}
	for _, node := range nodes {
		if unix.Access(node, unix.R_OK) == nil {
			return ""
		}
	}
	return "cannot read /dev/input: add the user to the input group or run as root"
}
