//go:build darwin

package keyboard

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework ApplicationServices -framework Carbon
// #include <ApplicationServices/ApplicationServices.h>
// #include <Carbon/Carbon.h>
//
// static int ck_trusted(int prompt) {
//     const void* keys[] = { kAXTrustedCheckOptionPrompt };
//     const void* values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
//     CFDictionaryRef opts = CFDictionaryCreate(NULL, keys, values, 1,
//         &kCFCopyStringDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
//     Boolean ok = AXIsProcessTrustedWithOptions(opts);
//     CFRelease(opts);
//     return ok ? 1 : 0;
// }
//
// // Returns the key code typing ch without modifiers, or -1.
// static int ck_keycode_for(UniChar ch) {
//     TISInputSourceRef src = TISCopyCurrentKeyboardLayoutInputSource();
//     if (src == NULL) return -1;
//     CFDataRef data = TISGetInputSourceProperty(src, kTISPropertyUnicodeKeyLayoutData);
//     if (data == NULL) { CFRelease(src); return -1; }
//     const UCKeyboardLayout* layout = (const UCKeyboardLayout*)CFDataGetBytePtr(data);
//     int found = -1;
//     for (UInt16 code = 0; code < 128 && found < 0; code++) {
//         UInt32 dead = 0;
//         UniChar buf[4];
//         UniCharCount n = 0;
//         OSStatus st = UCKeyTranslate(layout, code, kUCKeyActionDisplay, 0, LMGetKbdType(),
//             kUCKeyTranslateNoDeadKeysBit, &dead, 4, &n, buf);
//         if (st == noErr && n == 1 && buf[0] == ch) found = code;
//     }
//     CFRelease(src);
//     return found;
// }
//
// // Layouts such as "Dvorak - QWERTY ⌘" type QWERTY while Command is down.
// static int ck_command_qwerty() {
//     TISInputSourceRef src = TISCopyCurrentKeyboardInputSource();
//     if (src == NULL) return 0;
//     CFStringRef name = TISGetInputSourceProperty(src, kTISPropertyLocalizedName);
//     int q = name != NULL && CFStringHasSuffix(name, CFSTR("⌘"));
//     CFRelease(src);
//     return q;
// }
//
// static CGEventSourceRef ck_suppressing_source() {
//     CGEventSourceRef src = CGEventSourceCreate(kCGEventSourceStateCombinedSessionState);
//     if (src == NULL) return NULL;
//     CGEventSourceSetLocalEventsFilterDuringSuppressionState(src,
//         kCGEventFilterMaskPermitLocalMouseEvents | kCGEventFilterMaskPermitSystemDefinedEvents,
//         kCGEventSuppressionStateSuppressionInterval);
//     return src;
// }
//
// static int ck_post(CGEventSourceRef src, CGKeyCode code, CGEventFlags flags, int down) {
//     CGEventRef ev = CGEventCreateKeyboardEvent(src, code, down ? true : false);
//     if (ev == NULL) return 0;
//     CGEventSetFlags(ev, flags);
//     CGEventPost(kCGHIDEventTap, ev);
//     CFRelease(ev);
//     return 1;
// }
//
// static void ck_release(CGEventSourceRef src) {
//     if (src != NULL) CFRelease(src);
// }
import "C"

import (
	"fmt"
	"sync"
)

type darwinBackend struct {
	mu  sync.Mutex
	src C.CGEventSourceRef
}

// NewSystem returns the CGEvent backend.
func NewSystem() Backend { return &darwinBackend{} }

func (b *darwinBackend) HasPermission() bool { return C.ck_trusted(0) == 1 }

func (b *darwinBackend) RequestPermission() { C.ck_trusted(1) }

func (b *darwinBackend) KeyCode(key rune) (KeyCode, bool) {
	if key > 0xFFFF {
		return 0, false
	}
	code := C.ck_keycode_for(C.UniChar(key))
	if code < 0 {
		return 0, false
	}
	return KeyCode(code), true
}

func (b *darwinBackend) CommandSwitchesToQWERTY() bool { return C.ck_command_qwerty() == 1 }

func (b *darwinBackend) SuppressLocalInput() {
	b.mu.Lock()
	defer b.mu.Unlock()
	C.ck_release(b.src)
	b.src = C.ck_suppressing_source()
}

func (b *darwinBackend) PostKey(code KeyCode, mods Modifiers, down bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := C.int(0)
	if down {
		d = 1
	}
	if C.ck_post(b.src, C.CGKeyCode(code), flags(mods), d) == 0 {
		return fmt.Errorf("create key event %#x", code)
	}
	return nil
}

func flags(m Modifiers) C.CGEventFlags {
	var f C.CGEventFlags
	if m.Has(Command) {
		f |= C.kCGEventFlagMaskCommand
	}
	if m.Has(Control) {
		f |= C.kCGEventFlagMaskControl
	}
	if m.Has(Option) {
		f |= C.kCGEventFlagMaskAlternate
	}
	if m.Has(Shift) {
		f |= C.kCGEventFlagMaskShift
	}
	return f
}
