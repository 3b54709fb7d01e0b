// Package frontmost reports which application owns keyboard focus, so copies
// can be attributed to (and filtered by) their source.
package frontmost

// Source resolves the frontmost application's identifier. An empty string
// means the application could not be determined.
type Source interface {
	FrontmostApp() string
}

// Static always reports the same application.
type Static string

func (s Static) FrontmostApp() string { return string(s) }
