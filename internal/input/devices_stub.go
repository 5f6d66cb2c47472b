//go:build !linux

package input

// ListDevices is only meaningful for the evdev backend
func ListDevices() ([]DeviceInfo, error) {
	return nil, ErrUnsupported
}
