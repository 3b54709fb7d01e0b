package control

import (
	"context"
	"fmt"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the History service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client using cc.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// CopyOptions selects the item and how it is written back.
type CopyOptions struct {
	ID  string
	Pin string
	// StripFormatting overrides the daemon default when set.
	StripFormatting *bool
	Record          bool
	Paste           bool
}

func (o CopyOptions) toStruct() *structpb.Struct {
	f := map[string]*structpb.Value{
		"record": structpb.NewBoolValue(o.Record),
		"paste":  structpb.NewBoolValue(o.Paste),
	}
	if o.ID != "" {
		f["id"] = structpb.NewStringValue(o.ID)
	}
	if o.Pin != "" {
		f["pin"] = structpb.NewStringValue(o.Pin)
	}
	if o.StripFormatting != nil {
		f["strip_formatting"] = structpb.NewBoolValue(*o.StripFormatting)
	}
	return &structpb.Struct{Fields: f}
}

func (c *Client) List(ctx context.Context, limit int) ([]Summary, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("List"), wrapperspb.Int64(int64(limit)), out); err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		s, err := summaryFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("decode list entry: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *Client) Copy(ctx context.Context, opts CopyOptions) error {
	return c.cc.Invoke(ctx, fullMethod("Copy"), opts.toStruct(), new(emptypb.Empty))
}

func (c *Client) CopyText(ctx context.Context, s string) error {
	return c.cc.Invoke(ctx, fullMethod("CopyText"), wrapperspb.String(s), new(emptypb.Empty))
}

func (c *Client) Paste(ctx context.Context) error {
	return c.cc.Invoke(ctx, fullMethod("Paste"), new(emptypb.Empty), new(emptypb.Empty))
}

// Pin pins the item to pin, or unpins it when pin is "".
func (c *Client) Pin(ctx context.Context, id, pin string) error {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":  structpb.NewStringValue(id),
		"pin": structpb.NewStringValue(pin),
	}}
	return c.cc.Invoke(ctx, fullMethod("Pin"), req, new(emptypb.Empty))
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.cc.Invoke(ctx, fullMethod("Delete"), wrapperspb.String(id), new(emptypb.Empty))
}

// Pause pauses or resumes recording and returns the daemon's new state.
func (c *Client) Pause(ctx context.Context, paused bool) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, fullMethod("Pause"), wrapperspb.Bool(paused), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// Content returns one representation of an item and its media type.
func (c *Client) Content(ctx context.Context, id, typ string) ([]byte, string, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   structpb.NewStringValue(id),
		"type": structpb.NewStringValue(typ),
	}}
	out := new(httpbody.HttpBody)
	if err := c.cc.Invoke(ctx, fullMethod("Content"), req, out); err != nil {
		return nil, "", err
	}
	return out.GetData(), out.GetContentType(), nil
}
