//go:build !windows && !linux && !darwin

package osutils

// IsAdmin is a stub for unsupported platforms
func IsAdmin() bool {
	return false
}

// AccessHint is a stub for unsupported platforms
func AccessHint() string {
	return ""
}
