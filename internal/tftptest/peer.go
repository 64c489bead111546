package tftptest

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/Wa4h1h/go-tftp-client/pkg/types"
)

const peerTimeout = 5 * time.Second

// Step is one turn of a scripted peer: it waits for Expect when set, then
// sends Send when set.
type Step struct {
	Expect []byte
	Send   []byte
}

// Peer is a loopback UDP server that accepts one request on its listening
// address and plays a script from a fresh port, as a TFTP server does.
type Peer struct {
	listener net.PacketConn
	steps    []Step
	request  []byte
	done     chan error
}

func NewPeer(t testing.TB, steps ...Step) *Peer {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("error while listening: %s", err.Error())
	}

	p := &Peer{listener: conn, steps: steps, done: make(chan error, 1)}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	go func() {
		p.done <- p.serve()
	}()

	return p
}

func (p *Peer) Addr() net.Addr {
	return p.listener.LocalAddr()
}

// Wait blocks until the script finished and returns the request the peer
// received.
func (p *Peer) Wait() ([]byte, error) {
	select {
	case err := <-p.done:
		return p.request, err
	case <-time.After(2 * peerTimeout):
		return nil, errors.New("peer did not finish")
	}
}

func (p *Peer) serve() error {
	datagram := make([]byte, types.DatagramSize+1)

	if err := p.listener.SetReadDeadline(time.Now().Add(peerTimeout)); err != nil {
		return fmt.Errorf("error while setting read deadline: %w", err)
	}

	n, addr, err := p.listener.ReadFrom(datagram)
	if err != nil {
		return fmt.Errorf("error while reading request: %w", err)
	}

	p.request = append([]byte(nil), datagram[:n]...)

	conn, err := net.Dial("udp", addr.String())
	if err != nil {
		return fmt.Errorf("error while dialing %s: %w", addr, err)
	}

	defer conn.Close()

	for i, s := range p.steps {
		if s.Expect != nil {
			if err := conn.SetReadDeadline(time.Now().Add(peerTimeout)); err != nil {
				return fmt.Errorf("error while setting read deadline: %w", err)
			}

			n, err := conn.Read(datagram)
			if err != nil {
				return fmt.Errorf("step %d: error while reading: %w", i, err)
			}

			if !bytes.Equal(datagram[:n], s.Expect) {
				return fmt.Errorf("step %d: got % x, want % x", i, datagram[:n], s.Expect)
			}
		}

		if s.Send != nil {
			if _, err := conn.Write(s.Send); err != nil {
				return fmt.Errorf("step %d: error while writing: %w", i, err)
			}
		}
	}

	return nil
}
