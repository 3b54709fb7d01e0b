package content

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// HTMLText returns the visible text of an HTML fragment. Script and style
// bodies are dropped.
func HTMLText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return html.UnescapeString(string(strictPolicy.SanitizeBytes(data)))
}

// rtfDestinations are groups whose text is metadata, not document content.
var rtfDestinations = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"header":     true,
	"footer":     true,
	"listtable":  true,
}

// RTFText extracts the document text from an RTF blob. Input that does not
// start with an RTF header yields "".
func RTFText(data []byte) string {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return ""
	}

	var (
		b     strings.Builder
		depth int
		skip  = -1 // depth of the group being skipped, -1 when none
	)
	emit := func(s string) {
		if skip < 0 && depth > 0 {
			b.WriteString(s)
		}
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch c {
		case '{':
			depth++
		case '}':
			if skip == depth {
				skip = -1
			}
			depth--
		case '\r', '\n':
		case '\\':
			i++
			if i >= len(data) {
				break
			}
			c = data[i]
			switch {
			case c == '\\' || c == '{' || c == '}':
				emit(string(c))
			case c == '\'':
				if i+2 < len(data) {
					if v, err := strconv.ParseUint(string(data[i+1:i+3]), 16, 8); err == nil {
						emit(string(rune(v)))
					}
					i += 2
				}
			case c == '*':
				if skip < 0 {
					skip = depth
				}
			case isASCIILetter(c):
				start := i
				for i < len(data) && isASCIILetter(data[i]) {
					i++
				}
				word := string(data[start:i])
				pstart := i
				if i < len(data) && data[i] == '-' {
					i++
				}
				for i < len(data) && data[i] >= '0' && data[i] <= '9' {
					i++
				}
				param := string(data[pstart:i])
				if i >= len(data) || data[i] != ' ' {
					i-- // the delimiter is part of the text
				}

				switch {
				case rtfDestinations[word]:
					if skip < 0 {
						skip = depth
					}
				case word == "par" || word == "line":
					emit("\n")
				case word == "tab":
					emit("\t")
				case word == "u":
					if n, err := strconv.Atoi(param); err == nil {
						if n < 0 {
							n += 65536
						}
						emit(string(rune(n)))
						// skip the ANSI fallback character
						if i+1 < len(data) && data[i+1] != '\\' && data[i+1] != '{' && data[i+1] != '}' {
							i++
						}
					}
				}
			}
		default:
			emit(string(c))
		}
	}
	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
