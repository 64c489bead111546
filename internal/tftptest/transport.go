package tftptest

import (
	"errors"
	"net"
	"sync"
	"time"
)

var ErrScriptExhausted = errors.New("tftptest: no more scripted datagrams")

// Reply is a scripted result of one ReadFrom call. Err, when set, is returned
// instead of a datagram.
type Reply struct {
	From net.Addr
	Err  error
	Data []byte
}

type Datagram struct {
	To   net.Addr
	Data []byte
}

// Transport replays Replies in order regardless of what is written to it and
// records every written datagram.
type Transport struct {
	mu        sync.Mutex
	replies   []Reply
	sent      []Datagram
	deadlines []time.Time
	WriteErr  error
}

func NewTransport(replies ...Reply) *Transport {
	return &Transport{replies: replies}
}

func (t *Transport) ReadFrom(p []byte) (int, net.Addr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.replies) == 0 {
		return 0, nil, ErrScriptExhausted
	}

	r := t.replies[0]
	t.replies = t.replies[1:]

	if r.Err != nil {
		return 0, nil, r.Err
	}

	return copy(p, r.Data), r.From, nil
}

func (t *Transport) WriteTo(p []byte, addr net.Addr) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.WriteErr != nil {
		return 0, t.WriteErr
	}

	t.sent = append(t.sent, Datagram{To: addr, Data: append([]byte(nil), p...)})

	return len(p), nil
}

func (t *Transport) SetReadDeadline(d time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.deadlines = append(t.deadlines, d)

	return nil
}

func (t *Transport) Sent() []Datagram {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Datagram(nil), t.sent...)
}

// SentData returns the payload of every written datagram.
func (t *Transport) SentData() [][]byte {
	sent := t.Sent()
	out := make([][]byte, 0, len(sent))

	for _, d := range sent {
		out = append(out, d.Data)
	}

	return out
}

func (t *Transport) Deadlines() []time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]time.Time(nil), t.deadlines...)
}

// Addr is a fixed UDP address for scripted replies.
func Addr(port int) net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}
