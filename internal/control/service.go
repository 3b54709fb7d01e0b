// Package control exposes the daemon's history to the CLI: a gRPC service
// and an HTTP/JSON gateway, multiplexed on the local IPC socket.
package control

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/pasteboard"
	"go.klb.dev/clipkeep/internal/store/sqlite"
)

// Store is the part of the history store the service reads and edits.
type Store interface {
	Summaries(ctx context.Context, limit int) ([]history.Summary, error)
	Get(ctx context.Context, id string) (history.Item, error)
	GetByPin(ctx context.Context, pin string) (history.Item, error)
	SetPin(ctx context.Context, id, pin string) error
	Delete(ctx context.Context, id string) error
}

// Copier writes history back to the clipboard.
type Copier interface {
	CopyItem(ctx context.Context, it history.Item, stripFormatting, record bool) error
	CopyPlainText(ctx context.Context, s string) error
}

// Paster presses the paste shortcut in the focused application.
type Paster interface {
	Paste()
}

// Recorder pauses and resumes recording.
type Recorder interface {
	SetIgnoreEvents(on bool)
	Paused() bool
}

// Service implements HistoryServer.
type Service struct {
	store  Store
	copier Copier
	paster Paster
	rec    Recorder

	strip atomic.Bool
}

var _ HistoryServer = (*Service)(nil)

// NewService returns a Service over the daemon's components.
func NewService(store Store, copier Copier, paster Paster, rec Recorder) *Service {
	return &Service{store: store, copier: copier, paster: paster, rec: rec}
}

// SetStripFormatting sets the default for Copy requests that do not say
// whether to strip formatting.
func (s *Service) SetStripFormatting(on bool) { s.strip.Store(on) }

// List implements History.List. A zero limit lists everything.
func (s *Service) List(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	sums, err := s.store.Summaries(ctx, int(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, len(sums))}
	for i, sum := range sums {
		out.Values[i] = structpb.NewStructValue(SummaryOf(sum).toStruct())
	}
	return out, nil
}

// Copy implements History.Copy. The request names the item by "id" or
// "pin" and may set "strip_formatting", "record" and "paste".
func (s *Service) Copy(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	it, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	strip := s.strip.Load()
	if v, ok := req.GetFields()["strip_formatting"]; ok {
		strip = v.GetBoolValue()
	}
	record := boolField(req, "record")

	if err := s.copier.CopyItem(ctx, it, strip, record); err != nil {
		slog.Error("copy history item failed", "id", it.ID, "err", err)
		return nil, toStatus(err)
	}
	slog.Info("history item copied", "id", it.ID, "strip_formatting", strip, "record", record)

	if boolField(req, "paste") {
		s.paster.Paste()
	}
	return &emptypb.Empty{}, nil
}

// CopyText implements History.CopyText. The text is recorded like any other
// copy.
func (s *Service) CopyText(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.copier.CopyPlainText(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Paste implements History.Paste.
func (s *Service) Paste(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.paster.Paste()
	return &emptypb.Empty{}, nil
}

// Pin implements History.Pin. An empty "pin" unpins.
func (s *Service) Pin(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.store.SetPin(ctx, id, stringField(req, "pin")); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Delete implements History.Delete.
func (s *Service) Delete(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.store.Delete(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Pause implements History.Pause and returns the resulting state.
func (s *Service) Pause(_ context.Context, req *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error) {
	s.rec.SetIgnoreEvents(req.GetValue())
	slog.Info("recording paused", "paused", req.GetValue())
	return wrapperspb.Bool(s.rec.Paused()), nil
}

// Content implements History.Content: the raw bytes of one representation,
// the first one when "type" is empty.
func (s *Service) Content(ctx context.Context, req *structpb.Struct) (*httpbody.HttpBody, error) {
	it, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	t := pasteboard.TypeID(stringField(req, "type"))
	if t == "" {
		t = it.Contents[0].Type
	}
	v, ok := it.Value(t)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "item %s has no %s content", it.ID, t)
	}
	return &httpbody.HttpBody{ContentType: MediaType(t), Data: v}, nil
}

func (s *Service) lookup(ctx context.Context, req *structpb.Struct) (history.Item, error) {
	var (
		it  history.Item
		err error
	)
	switch id, pin := stringField(req, "id"), stringField(req, "pin"); {
	case id != "":
		it, err = s.store.Get(ctx, id)
	case pin != "":
		it, err = s.store.GetByPin(ctx, pin)
	default:
		return history.Item{}, status.Error(codes.InvalidArgument, "id or pin is required")
	}
	if err != nil {
		return history.Item{}, toStatus(err)
	}
	if len(it.Contents) == 0 {
		return history.Item{}, status.Errorf(codes.FailedPrecondition, "item %s has no contents", it.ID)
	}
	return it, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, sqlite.ErrPinTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, sqlite.ErrInvalidPin):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}
