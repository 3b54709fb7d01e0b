// Package ipc provides the local channel CLI commands use to reach a running
// clipkeep daemon: a Unix domain socket, or a named pipe on Windows.
//
// The daemon serves both gRPC and HTTP/JSON on the one listener.
package ipc

import (
	"context"
	"net"
	"os"
	"time"
)

const dialTimeout = 200 * time.Millisecond

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/clipkeep.sock, else $TMPDIR/clipkeep.sock
//   - macOS:   $TMPDIR/clipkeep.sock
//   - Windows: \\.\pipe\clipkeep
//
// $CLIPKEEP_SOCKET overrides the path on every platform.
func SocketPath() string {
	if s := os.Getenv("CLIPKEEP_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the IPC
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	c, err := Dial(ctx, SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the IPC socket path, removing a stale socket
// left by a crashed run first.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the IPC socket at path. Its signature fits
// grpc.WithContextDialer.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	return dialIPC(ctx, path)
}
