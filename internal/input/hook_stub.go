//go:build !windows && !darwin && !linux

package input

// Stub implementation for platforms without a hook backend

type stubHook struct{}

// NewHook creates a stub hook
func NewHook(opts Options) Hook {
	return &stubHook{}
}

// Start always fails with ErrUnsupported
func (s *stubHook) Start(h Handler) error {
	return ErrUnsupported
}

// Stop does nothing (stub)
func (s *stubHook) Stop() error {
	return nil
}
