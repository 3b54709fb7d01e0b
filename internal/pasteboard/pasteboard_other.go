//go:build !darwin && !windows && !linux

package pasteboard

// New returns an in-memory backend suitable for headless containers.
func New() Pasteboard { return NewMemory() }
