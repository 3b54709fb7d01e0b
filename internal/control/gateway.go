package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NewGateway returns an HTTP/JSON mux that calls srv in process:
//
//	GET    /v1/items?limit=N
//	GET    /v1/items/{id}/content?type=T
//	POST   /v1/items/{id}/copy     {"strip_formatting":bool,"record":bool,"paste":bool}
//	PUT    /v1/items/{id}/pin      {"pin":"a"}
//	DELETE /v1/items/{id}
//	POST   /v1/text                "text"
//	POST   /v1/paste
//	PUT    /v1/pause               true|false
func NewGateway(srv HistoryServer) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux()
	gw := &gateway{mux: mux, srv: srv}

	routes := []struct {
		method, pattern string
		h               gwruntime.HandlerFunc
	}{
		{http.MethodGet, "/v1/items", gw.list},
		{http.MethodGet, "/v1/items/{id}/content", gw.content},
		{http.MethodPost, "/v1/items/{id}/copy", gw.copy},
		{http.MethodPut, "/v1/items/{id}/pin", gw.pin},
		{http.MethodDelete, "/v1/items/{id}", gw.delete},
		{http.MethodPost, "/v1/text", gw.copyText},
		{http.MethodPost, "/v1/paste", gw.paste},
		{http.MethodPut, "/v1/pause", gw.pause},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.h); err != nil {
			return nil, fmt.Errorf("route %s %s: %w", r.method, r.pattern, err)
		}
	}
	return mux, nil
}

type gateway struct {
	mux *gwruntime.ServeMux
	srv HistoryServer
}

// call decodes the body into in (unless nil), runs fn and writes the
// response the way generated gateway handlers do.
func (g *gateway) call(w http.ResponseWriter, r *http.Request, in proto.Message, fn func(context.Context) (proto.Message, error)) {
	ctx := gwruntime.NewServerMetadataContext(r.Context(), gwruntime.ServerMetadata{})
	inbound, outbound := gwruntime.MarshalerForRequest(g.mux, r)

	if in != nil {
		if err := inbound.NewDecoder(r.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
			gwruntime.HTTPError(ctx, g.mux, outbound, w, r, status.Errorf(codes.InvalidArgument, "decode body: %v", err))
			return
		}
	}

	resp, err := fn(ctx)
	if err != nil {
		gwruntime.HTTPError(ctx, g.mux, outbound, w, r, err)
		return
	}
	gwruntime.ForwardResponseMessage(ctx, g.mux, outbound, w, r, resp)
}

func (g *gateway) list(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, nil, func(ctx context.Context) (proto.Message, error) {
		var limit int64
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "limit: %v", err)
			}
			limit = n
		}
		return g.srv.List(ctx, wrapperspb.Int64(limit))
	})
}

func (g *gateway) content(w http.ResponseWriter, r *http.Request, p map[string]string) {
	g.call(w, r, nil, func(ctx context.Context) (proto.Message, error) {
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			"id":   structpb.NewStringValue(p["id"]),
			"type": structpb.NewStringValue(r.URL.Query().Get("type")),
		}}
		return g.srv.Content(ctx, req)
	})
}

func (g *gateway) copy(w http.ResponseWriter, r *http.Request, p map[string]string) {
	req := &structpb.Struct{}
	g.call(w, r, req, func(ctx context.Context) (proto.Message, error) {
		if req.Fields == nil {
			req.Fields = map[string]*structpb.Value{}
		}
		req.Fields["id"] = structpb.NewStringValue(p["id"])
		return g.srv.Copy(ctx, req)
	})
}

func (g *gateway) pin(w http.ResponseWriter, r *http.Request, p map[string]string) {
	req := &structpb.Struct{}
	g.call(w, r, req, func(ctx context.Context) (proto.Message, error) {
		if req.Fields == nil {
			req.Fields = map[string]*structpb.Value{}
		}
		req.Fields["id"] = structpb.NewStringValue(p["id"])
		return g.srv.Pin(ctx, req)
	})
}

func (g *gateway) delete(w http.ResponseWriter, r *http.Request, p map[string]string) {
	g.call(w, r, nil, func(ctx context.Context) (proto.Message, error) {
		return g.srv.Delete(ctx, wrapperspb.String(p["id"]))
	})
}

func (g *gateway) copyText(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &wrapperspb.StringValue{}
	g.call(w, r, req, func(ctx context.Context) (proto.Message, error) {
		return g.srv.CopyText(ctx, req)
	})
}

func (g *gateway) paste(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, nil, func(ctx context.Context) (proto.Message, error) {
		return g.srv.Paste(ctx, &emptypb.Empty{})
	})
}

func (g *gateway) pause(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &wrapperspb.BoolValue{}
	g.call(w, r, req, func(ctx context.Context) (proto.Message, error) {
		return g.srv.Pause(ctx, req)
	})
}
