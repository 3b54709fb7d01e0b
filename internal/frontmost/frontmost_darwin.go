//go:build darwin

package frontmost

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
//
// static char* ck_frontmost_bundle_id() {
//     @autoreleasepool {
//         NSString* bid = [[[NSWorkspace sharedWorkspace] frontmostApplication] bundleIdentifier];
//         if (bid == nil) return NULL;
//         return strdup([bid UTF8String]);
//     }
// }
import "C"

import "unsafe"

type workspace struct{}

// New returns the NSWorkspace-backed source.
func New() Source { return workspace{} }

func (workspace) FrontmostApp() string {
	cs := C.ck_frontmost_bundle_id()
	if cs == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs)
}
