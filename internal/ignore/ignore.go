// Package ignore decides which clipboard changes are not worth recording.
//
// There are three independent rules and all of them must allow a change for
// it to be recorded:
//
//   - types: the clipboard's declared types must overlap the enabled set and
//     must not include a hard-ignored or user-ignored type
//   - app: the frontmost application must pass the deny list (or, in
//     allow-list mode, be on it)
//   - text: per clipboard item, the plain text must not match any ignore
//     pattern
//
// Pattern errors fail open: a pattern that does not compile never matches.
package ignore

import (
	"log/slog"
	"regexp"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"go.klb.dev/clipkeep/internal/pasteboard"
)

// DefaultIgnoredTypes are types well-known apps use to flag transient or
// generated clipboard contents without the nspasteboard.org markers.
var DefaultIgnoredTypes = []pasteboard.TypeID{
	"de.petermaurer.TransientPasteboardType",
	"com.typeit4me.clipping",
	"Pasteboard generator type",
	"com.agilebits.onepassword",
	"net.antelle.keeweb",
}

// Config is a read-only snapshot of the ignore settings, taken once per poll.
type Config struct {
	EnabledTypes     []pasteboard.TypeID
	UserIgnoredTypes []pasteboard.TypeID
	// IgnoredApps holds application identifiers or doublestar patterns. With
	// IgnoreAllExceptListed it becomes an allow list.
	IgnoredApps           []string
	IgnoreAllExceptListed bool
	Regexps               []string
}

// DefaultConfig enables every supported type and ignores the well-known
// transient types.
func DefaultConfig() Config {
	return Config{
		EnabledTypes:     append([]pasteboard.TypeID(nil), pasteboard.SupportedTypes...),
		UserIgnoredTypes: append([]pasteboard.TypeID(nil), DefaultIgnoredTypes...),
	}
}

type typeSet map[pasteboard.TypeID]struct{}

func setOf(lists ...[]pasteboard.TypeID) typeSet {
	s := make(typeSet)
	for _, l := range lists {
		for _, t := range l {
			s[t] = struct{}{}
		}
	}
	return s
}

func (s typeSet) has(t pasteboard.TypeID) bool {
	_, ok := s[t]
	return ok
}

// IgnoredTypes returns hard-ignored plus user-ignored types.
func (c Config) IgnoredTypes() map[pasteboard.TypeID]struct{} {
	return setOf(pasteboard.HardIgnoredTypes, c.UserIgnoredTypes)
}

// DisabledTypes returns the supported types that are not enabled.
func (c Config) DisabledTypes() map[pasteboard.TypeID]struct{} {
	enabled := setOf(c.EnabledTypes)
	out := make(typeSet)
	for _, t := range pasteboard.SupportedTypes {
		if !enabled.has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// IgnoresTypes reports whether a clipboard declaring types must be skipped.
func (c Config) IgnoresTypes(types []pasteboard.TypeID) bool {
	enabled := setOf(c.EnabledTypes)
	ignored := typeSet(c.IgnoredTypes())

	anyEnabled := false
	for _, t := range types {
		if ignored.has(t) {
			return true
		}
		if enabled.has(t) {
			anyEnabled = true
		}
	}
	return !anyEnabled
}

// IgnoresApp reports whether a copy made while app was frontmost must be
// skipped. An unknown app ("") is never ignored.
func (c Config) IgnoresApp(app string) bool {
	if app == "" {
		return false
	}
	listed := false
	for _, pattern := range c.IgnoredApps {
		if matchApp(pattern, app) {
			listed = true
			break
		}
	}
	if c.IgnoreAllExceptListed {
		return !listed
	}
	return listed
}

func matchApp(pattern, app string) bool {
	if pattern == app {
		return true
	}
	ok, err := doublestar.Match(pattern, app)
	return err == nil && ok
}

// IgnoresText reports whether text matches any configured pattern.
// Invalid patterns are skipped.
func (c Config) IgnoresText(text string) bool {
	for _, p := range c.Regexps {
		re := compile(p)
		if re == nil {
			continue
		}
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// compiled caches patterns across polls. Invalid patterns are cached as nil.
var compiled sync.Map // string → *regexp.Regexp

func compile(pattern string) *regexp.Regexp {
	if v, ok := compiled.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		slog.Debug("ignore pattern does not compile, skipping", "pattern", pattern, "err", err)
		re = nil
	}
	compiled.Store(pattern, re)
	return re
}
