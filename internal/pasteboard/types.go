package pasteboard

import "strings"

// TypeID names a clipboard representation. Values are uniform type
// identifiers; unknown identifiers are carried through untouched.
type TypeID string

const (
	TypeFileURL   TypeID = "public.file-url"
	TypeHTML      TypeID = "public.html"
	TypeTIFF      TypeID = "public.tiff"
	TypeRTF       TypeID = "public.rtf"
	TypePlainText TypeID = "public.utf8-plain-text"
	TypePNG       TypeID = "public.png"
	TypePDF       TypeID = "com.adobe.pdf"

	// Marker types from nspasteboard.org that apps use to flag contents that
	// should never be recorded.
	TypeTransient     TypeID = "org.nspasteboard.TransientType"
	TypeConcealed     TypeID = "org.nspasteboard.ConcealedType"
	TypeAutoGenerated TypeID = "org.nspasteboard.AutoGeneratedType"

	// Microsoft Office writes these for bookmarks and cross-references.
	TypeMicrosoftLinkSource TypeID = "com.microsoft.Link-Source"
	TypeMicrosoftObjectLink TypeID = "com.microsoft.ObjectLink"

	// TypeProvenance is written with an empty value on every write-back so
	// the resulting clipboard state can be recognised as our own.
	TypeProvenance TypeID = "dev.klb.clipkeep"

	dynamicPrefix         = "dyn."
	microsoftSourcePrefix = "com.microsoft.ole.source."
)

// SupportedTypes is the set of types the history knows how to record.
var SupportedTypes = []TypeID{
	TypeFileURL,
	TypeHTML,
	TypeTIFF,
	TypeRTF,
	TypePlainText,
	TypePNG,
}

// HardIgnoredTypes always suppress recording, whatever the configuration.
var HardIgnoredTypes = []TypeID{
	TypeTransient,
	TypeConcealed,
	TypeAutoGenerated,
}

// IsDynamic reports whether t is a synthesized "dyn." identifier.
func (t TypeID) IsDynamic() bool { return strings.HasPrefix(string(t), dynamicPrefix) }

// IsLinkedSource reports whether t is a Microsoft OLE linked-source type.
func (t TypeID) IsLinkedSource() bool {
	return strings.HasPrefix(string(t), microsoftSourcePrefix)
}

// IsRichText reports whether t is a formatted text representation.
func (t TypeID) IsRichText() bool { return t == TypeRTF || t == TypeHTML }

// IsImage reports whether t is an image representation.
func (t TypeID) IsImage() bool { return t == TypePNG || t == TypeTIFF }

// ParseTypes converts configuration strings into TypeIDs, dropping blanks.
func ParseTypes(ss []string) []TypeID {
	out := make([]TypeID, 0, len(ss))
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, TypeID(s))
	}
	return out
}

// Strings converts types back to plain strings.
func Strings(types []TypeID) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
