package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/clipkeep/internal/control"
	"go.klb.dev/clipkeep/internal/ipc"
)

const callTimeout = 5 * time.Second

// dialIPC returns a *grpc.ClientConn connected to the daemon's IPC socket.
// The socket is local and owner-restricted, so no credentials are sent.
func dialIPC() (*grpc.ClientConn, error) {
	return grpc.NewClient(
		"passthrough:///clipkeep",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return ipc.Dial(ctx, ipc.SocketPath())
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
}

// withClient runs fn against the running daemon.
func withClient(fn func(context.Context, *control.Client) error) error {
	if !ipc.IsRunning() {
		return fmt.Errorf("no clipkeep daemon is listening on %s (start one with \"clipkeep daemon\")", ipc.SocketPath())
	}
	conn, err := dialIPC()
	if err != nil {
		return fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return fn(ctx, control.NewClient(conn))
}
