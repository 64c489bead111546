package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Transport is the connectionless datagram channel a transfer runs over.
// net.PacketConn satisfies it.
type Transport interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// ListenTransport binds a UDP socket on localAddr, e.g. ":0" for an ephemeral
// port.
func ListenTransport(ctx context.Context, localAddr string) (net.PacketConn, error) {
	l := net.ListenConfig{
		Control: controlReuseAddr(),
	}

	conn, err := l.ListenPacket(ctx, "udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("error while binding %s: %w", localAddr, err)
	}

	return conn, nil
}

type control func(network, address string, c syscall.RawConn) error

func controlReuseAddr() control {
	return func(network, address string, c syscall.RawConn) error {
		var opErr error

		err := c.Control(func(fd uintptr) {
			opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}

		return opErr
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var ne net.Error

	return errors.As(err, &ne) && ne.Timeout()
}
