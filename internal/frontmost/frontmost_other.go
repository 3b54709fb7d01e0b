//go:build !darwin && !linux

package frontmost

// New returns a source that never resolves an application, so the
// source-app rule never applies.
func New() Source { return Static("") }
