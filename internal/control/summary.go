package control

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

// Summary is the listing view of a history item, without content bytes.
type Summary struct {
	ID          string
	Title       string
	Application string
	Pin         string
	Types       []string
	CreatedAt   time.Time
}

// SummaryOf converts a stored summary to its wire form.
func SummaryOf(s history.Summary) Summary {
	return Summary{
		ID:          s.ID,
		Title:       s.Title,
		Application: s.Application,
		Pin:         s.Pin,
		Types:       pasteboard.Strings(s.Types),
		CreatedAt:   s.CreatedAt,
	}
}

func (s Summary) toStruct() *structpb.Struct {
	types := make([]*structpb.Value, len(s.Types))
	for i, t := range s.Types {
		types[i] = structpb.NewStringValue(t)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":          structpb.NewStringValue(s.ID),
		"title":       structpb.NewStringValue(s.Title),
		"application": structpb.NewStringValue(s.Application),
		"pin":         structpb.NewStringValue(s.Pin),
		"types":       structpb.NewListValue(&structpb.ListValue{Values: types}),
		"created_at":  structpb.NewStringValue(s.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}}
}

func summaryFromStruct(st *structpb.Struct) (Summary, error) {
	if st == nil {
		return Summary{}, fmt.Errorf("not an object")
	}
	s := Summary{
		ID:          stringField(st, "id"),
		Title:       stringField(st, "title"),
		Application: stringField(st, "application"),
		Pin:         stringField(st, "pin"),
	}
	for _, v := range st.GetFields()["types"].GetListValue().GetValues() {
		s.Types = append(s.Types, v.GetStringValue())
	}
	if ts := stringField(st, "created_at"); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Summary{}, fmt.Errorf("created_at: %w", err)
		}
		s.CreatedAt = t
	}
	return s, nil
}

var mediaTypes = map[pasteboard.TypeID]string{
	pasteboard.TypePlainText: "text/plain; charset=utf-8",
	pasteboard.TypeHTML:      "text/html; charset=utf-8",
	pasteboard.TypeRTF:       "application/rtf",
	pasteboard.TypePNG:       "image/png",
	pasteboard.TypeTIFF:      "image/tiff",
	pasteboard.TypePDF:       "application/pdf",
	pasteboard.TypeFileURL:   "text/uri-list",
}

// MediaType maps a clipboard type to the MIME type served over HTTP.
func MediaType(t pasteboard.TypeID) string {
	if m, ok := mediaTypes[t]; ok {
		return m
	}
	return "application/octet-stream"
}
