//go:build darwin

package osutils

// AccessHint explains why the input hooks may miss events. The event tap
// silently receives nothing until the permission is granted.
func AccessHint() string {
	return "grant Accessibility and Input Monitoring permission in System Settings if no input is shown"
}
