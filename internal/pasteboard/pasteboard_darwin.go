//go:build darwin

package pasteboard

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
//
// static NSInteger ck_change_count() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
//
// static int ck_item_count() {
//     @autoreleasepool {
//         return (int)[[[NSPasteboard generalPasteboard] pasteboardItems] count];
//     }
// }
//
// static NSPasteboardItem* ck_item(int i) {
//     NSArray<NSPasteboardItem*>* items = [[NSPasteboard generalPasteboard] pasteboardItems];
//     if (i < 0 || i >= (int)[items count]) return nil;
//     return [items objectAtIndex:i];
// }
//
// // Returns the item's types joined by '\n'. Caller frees.
// static char* ck_item_types(int i) {
//     @autoreleasepool {
//         NSPasteboardItem* item = ck_item(i);
//         if (item == nil) return NULL;
//         NSString* joined = [[item types] componentsJoinedByString:@"\n"];
//         return strdup([joined UTF8String]);
//     }
// }
//
// // Returns a malloc'd copy of the data for type, or NULL. Caller frees.
// static void* ck_item_data(int i, const char* type, int* n) {
//     @autoreleasepool {
//         *n = 0;
//         NSPasteboardItem* item = ck_item(i);
//         if (item == nil) return NULL;
//         NSData* data = [item dataForType:[NSString stringWithUTF8String:type]];
//         if (data == nil) return NULL;
//         *n = (int)[data length];
//         void* out = malloc(*n > 0 ? *n : 1);
//         memcpy(out, [data bytes], *n);
//         return out;
//     }
// }
//
// // Returns the item's string for type, decoded by AppKit. Caller frees.
// static char* ck_item_string(int i, const char* type) {
//     @autoreleasepool {
//         NSPasteboardItem* item = ck_item(i);
//         if (item == nil) return NULL;
//         NSString* s = [item stringForType:[NSString stringWithUTF8String:type]];
//         if (s == nil) return NULL;
//         return strdup([s UTF8String]);
//     }
// }
//
// static void ck_clear() {
//     [[NSPasteboard generalPasteboard] clearContents];
// }
//
// static int ck_set_data(const char* type, const void* bytes, int n) {
//     @autoreleasepool {
//         NSData* data = [NSData dataWithBytes:bytes length:n];
//         return [[NSPasteboard generalPasteboard] setData:data forType:[NSString stringWithUTF8String:type]] ? 1 : 0;
//     }
// }
//
// static int ck_write_file_urls(char** urls, int n) {
//     @autoreleasepool {
//         NSMutableArray* objects = [NSMutableArray arrayWithCapacity:n];
//         for (int i = 0; i < n; i++) {
//             NSURL* url = [NSURL URLWithString:[NSString stringWithUTF8String:urls[i]]];
//             if (url != nil) [objects addObject:url];
//         }
//         return [[NSPasteboard generalPasteboard] writeObjects:objects] ? 1 : 0;
//     }
// }
import "C"

import (
	"fmt"
	"strings"
	"unsafe"
)

type darwinBackend struct{}

// New returns the macOS NSPasteboard backend.
func New() Pasteboard { return &darwinBackend{} }

func (b *darwinBackend) Name() string { return "macOS NSPasteboard" }

func (b *darwinBackend) ChangeCount() int { return int(C.ck_change_count()) }

func (b *darwinBackend) Types() []TypeID { return TypesOf(b.Items()) }

func (b *darwinBackend) Items() []Item {
	n := int(C.ck_item_count())
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		cs := C.ck_item_types(C.int(i))
		if cs == nil {
			continue
		}
		raw := C.GoString(cs)
		C.free(unsafe.Pointer(cs))
		items = append(items, &darwinItem{index: i, types: ParseTypes(strings.Split(raw, "\n"))})
	}
	return items
}

func (b *darwinBackend) Clear() { C.ck_clear() }

func (b *darwinBackend) Write(t TypeID, data []byte) error {
	ct := C.CString(string(t))
	defer C.free(unsafe.Pointer(ct))
	var p unsafe.Pointer
	if len(data) > 0 {
		p = C.CBytes(data)
		defer C.free(p)
	}
	if C.ck_set_data(ct, p, C.int(len(data))) == 0 {
		return fmt.Errorf("set %s: pasteboard refused data", t)
	}
	return nil
}

func (b *darwinBackend) WriteFiles(urls [][]byte) error {
	if len(urls) == 0 {
		return nil
	}
	arr := C.malloc(C.size_t(len(urls)) * C.size_t(unsafe.Sizeof(uintptr(0))))
	defer C.free(arr)
	cs := unsafe.Slice((**C.char)(arr), len(urls))
	for i, u := range urls {
		cs[i] = C.CString(string(u))
	}
	defer func() {
		for _, c := range cs {
			C.free(unsafe.Pointer(c))
		}
	}()
	if C.ck_write_file_urls((**C.char)(arr), C.int(len(urls))) == 0 {
		return fmt.Errorf("write %d file urls: pasteboard refused objects", len(urls))
	}
	return nil
}

func (b *darwinBackend) Close() {}

// darwinItem reads lazily so filtered-out representations are never copied
// out of the pasteboard server.
type darwinItem struct {
	index int
	types []TypeID
}

func (it *darwinItem) Types() []TypeID { return it.types }

func (it *darwinItem) Data(t TypeID) []byte {
	ct := C.CString(string(t))
	defer C.free(unsafe.Pointer(ct))
	var n C.int
	p := C.ck_item_data(C.int(it.index), ct, &n)
	if p == nil {
		return nil
	}
	defer C.free(p)
	return C.GoBytes(p, n)
}

func (it *darwinItem) String(t TypeID) (string, bool) {
	ct := C.CString(string(t))
	defer C.free(unsafe.Pointer(ct))
	cs := C.ck_item_string(C.int(it.index), ct)
	if cs == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs), true
}
