package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

const shutdownTimeout = 2 * time.Second

// Serve runs the gRPC service and its HTTP gateway on l until ctx is done.
// gRPC and HTTP/1.1 requests are told apart on the first bytes of each
// connection.
func Serve(ctx context.Context, l net.Listener, srv HistoryServer) error {
	gw, err := NewGateway(srv)
	if err != nil {
		return err
	}

	m := cmux.New(l)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	RegisterHistoryServer(gs, srv)
	hs := &http.Server{Handler: gw, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 3)
	go func() { errc <- serveErr("grpc", gs.Serve(grpcL)) }()
	go func() { errc <- serveErr("http", hs.Serve(httpL)) }()
	go func() { errc <- serveErr("mux", m.Serve()) }()

	slog.Info("control socket listening", "addr", l.Addr().String())

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = hs.Shutdown(sctx)
	gs.Stop()
	m.Close()
	return err
}

// serveErr drops the errors servers return on a normal shutdown.
func serveErr(name string, err error) error {
	switch {
	case err == nil,
		errors.Is(err, http.ErrServerClosed),
		errors.Is(err, grpc.ErrServerStopped),
		errors.Is(err, cmux.ErrListenerClosed),
		errors.Is(err, net.ErrClosed):
		return nil
	default:
		return fmt.Errorf("%s server: %w", name, err)
	}
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		slog.Warn("control call failed", "method", info.FullMethod, "err", err, "took", time.Since(start))
	} else {
		slog.Debug("control call", "method", info.FullMethod, "took", time.Since(start))
	}
	return resp, err
}
