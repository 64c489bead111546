package client

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/Wa4h1h/go-tftp-client/pkg/types"
	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
	"pack.ag/tftp/netascii"
)

// Transfer runs get and put exchanges against one server over a borrowed
// Transport. Only one exchange may run on a Transfer at a time.
type Transfer struct {
	tr       Transport
	server   net.Addr
	peer     net.Addr
	last     []byte
	lastAddr net.Addr
	cfg      config
}

func NewTransfer(tr Transport, server net.Addr, opts ...Option) *Transfer {
	return &Transfer{tr: tr, server: server, cfg: newConfig(opts...)}
}

// GetFile downloads filename from server over tr.
func GetFile(filename string, tr Transport, server net.Addr, opts ...Option) ([]byte, error) {
	return NewTransfer(tr, server, opts...).Get(filename)
}

// PutFile uploads data as filename to server over tr.
func PutFile(filename string, data []byte, tr Transport, server net.Addr, opts ...Option) error {
	return NewTransfer(tr, server, opts...).Put(filename, data)
}

func (t *Transfer) start() {
	t.peer = nil
	t.last = nil
	t.lastAddr = nil
}

func (t *Transfer) finish() {
	d, ok := t.deadliner()
	if !ok {
		return
	}

	if err := d.SetReadDeadline(time.Time{}); err != nil {
		t.cfg.l.Warnf("error while clearing read deadline: %s", err.Error())
	}
}

func (t *Transfer) deadliner() (readDeadliner, bool) {
	if t.cfg.timeout <= 0 {
		return nil, false
	}

	d, ok := t.tr.(readDeadliner)

	return d, ok
}

func (t *Transfer) send(b []byte, addr net.Addr) error {
	t.last, t.lastAddr = b, addr

	if _, err := t.tr.WriteTo(b, addr); err != nil {
		return &types.TransportError{Op: "write", Err: err}
	}

	return nil
}

// receive blocks until a datagram from the transfer peer arrives. The source
// of the first datagram becomes the peer. With a timeout configured, every
// try has one deadline, datagrams from unknown peers included, and an expired
// try retransmits the last packet until numTries tries have failed.
func (t *Transfer) receive(datagram []byte) (int, error) {
	d, canTimeout := t.deadliner()
	tries := t.cfg.numTries
	armed := false

	for {
		if canTimeout && !armed {
			if err := d.SetReadDeadline(time.Now().Add(t.cfg.timeout)); err != nil {
				return 0, &types.TransportError{Op: "set read deadline", Err: err}
			}

			armed = true
		}

		n, addr, err := t.tr.ReadFrom(datagram)
		if err != nil {
			if !canTimeout || !isTimeout(err) {
				return 0, &types.TransportError{Op: "read", Err: err}
			}

			tries--
			if tries <= 0 {
				return 0, fmt.Errorf("%w: no response after %d tries", utils.ErrTransferTimeout, t.cfg.numTries)
			}

			t.cfg.l.Debugf("read timed out, retransmitting to %s", t.lastAddr)

			if _, err := t.tr.WriteTo(t.last, t.lastAddr); err != nil {
				return 0, &types.TransportError{Op: "write", Err: err}
			}

			armed = false

			continue
		}

		if t.peer == nil {
			t.peer = addr
			t.cfg.l.Debugf("transfer peer is %s", addr)
		} else if addr != nil && addr.String() != t.peer.String() {
			t.rejectUnknown(addr)

			continue
		}

		return n, nil
	}
}

// rejectUnknown answers a datagram that does not come from the transfer peer.
// The transfer itself goes on.
func (t *Transfer) rejectUnknown(addr net.Addr) {
	t.cfg.l.Warnf("datagram from unknown transfer id %s, expected %s", addr, t.peer)

	b, err := types.EncodeError(types.ErrUnknownTransferId, "unknown transfer id")
	if err != nil {
		t.cfg.l.Errorf("error while marshal error packet: %s", err.Error())

		return
	}

	if _, err := t.tr.WriteTo(b, addr); err != nil {
		t.cfg.l.Errorf("error while writing error packet to %s: %s", addr, err.Error())
	}
}

// remoteError decodes an ERROR datagram into the transfer error it reports.
func remoteError(packet []byte) error {
	var e types.Error

	if err := e.UnmarshalBinary(packet); err != nil {
		return types.NewInvalidResponse(packet, err)
	}

	return e.Err()
}

func toNetASCII(data []byte) ([]byte, error) {
	var b bytes.Buffer

	w := netascii.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("error while encoding netascii: %w", err)
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("error while flushing netascii encoder: %w", err)
	}

	return b.Bytes(), nil
}

func fromNetASCII(data []byte) ([]byte, error) {
	b, err := io.ReadAll(netascii.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("error while decoding netascii: %w", err)
	}

	return b, nil
}
