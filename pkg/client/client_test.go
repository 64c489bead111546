package client

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Wa4h1h/go-tftp-client/internal/tftptest"
	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, dir string) *Client {
	c := NewClient(zaptest.NewLogger(t).Sugar(), 1, dir)
	c.SetLocalAddr("127.0.0.1:0")

	t.Cleanup(func() {
		require.NoError(t, c.Close())
	})

	return c
}

func TestClientNotConnected(t *testing.T) {
	c := newTestClient(t, t.TempDir())

	require.ErrorIs(t, c.Get("f"), utils.ErrNotConnected)
	require.ErrorIs(t, c.Put("f"), utils.ErrNotConnected)
}

func TestClientGetStoresFile(t *testing.T) {
	dir := t.TempDir()
	payload := tftptest.Payload(700)

	peer := tftptest.NewPeer(t,
		tftptest.Step{Send: tftptest.Data(1, payload[:512])},
		tftptest.Step{Expect: tftptest.Ack(1), Send: tftptest.Data(2, payload[512:])},
		tftptest.Step{Expect: tftptest.Ack(2)},
	)

	c := newTestClient(t, dir)
	require.NoError(t, c.Connect(peer.Addr().String()))
	require.NoError(t, c.Get("boot/kernel.img"))

	got, err := os.ReadFile(filepath.Join(dir, "kernel.img"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	req, err := peer.Wait()
	require.NoError(t, err)
	assert.Equal(t, tftptest.RRQ("boot/kernel.img"), req)
}

func TestClientIgnoresRetransmitFromEarlierTransfer(t *testing.T) {
	dir := t.TempDir()

	first := tftptest.NewPeer(t,
		tftptest.Step{Send: tftptest.Data(1, []byte("AAA"))},
		tftptest.Step{Expect: tftptest.Ack(1), Send: tftptest.Data(1, []byte("AAA"))},
	)

	c := newTestClient(t, dir)
	require.NoError(t, c.Connect(first.Addr().String()))
	require.NoError(t, c.Get("a.txt"))

	_, err := first.Wait()
	require.NoError(t, err)

	second := tftptest.NewPeer(t,
		tftptest.Step{Send: tftptest.Data(1, []byte("BBB"))},
		tftptest.Step{Expect: tftptest.Ack(1)},
	)

	require.NoError(t, c.Connect(second.Addr().String()))
	require.NoError(t, c.Get("b.txt"))

	got, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("BBB"), got)

	_, err = second.Wait()
	require.NoError(t, err)
}

func TestClientCloseForgetsServer(t *testing.T) {
	c := newTestClient(t, t.TempDir())

	require.NoError(t, c.Connect("127.0.0.1:69"))
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Get("f"), utils.ErrNotConnected)
}

func TestClientPutReadsFile(t *testing.T) {
	dir := t.TempDir()
	payload := tftptest.Payload(100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), payload, 0o600))

	peer := tftptest.NewPeer(t,
		tftptest.Step{Send: tftptest.Ack(0)},
		tftptest.Step{Expect: tftptest.Data(1, payload), Send: tftptest.Ack(1)},
	)

	c := newTestClient(t, dir)
	require.NoError(t, c.Connect(peer.Addr().String()))
	require.NoError(t, c.Put("notes.txt"))

	req, err := peer.Wait()
	require.NoError(t, err)
	assert.Equal(t, tftptest.WRQ("notes.txt"), req)
}

func TestClientPutMissingLocalFile(t *testing.T) {
	peer := tftptest.NewPeer(t)

	c := newTestClient(t, t.TempDir())
	require.NoError(t, c.Connect(peer.Addr().String()))
	require.ErrorIs(t, c.Put("missing"), os.ErrNotExist)
}

func TestClientConnectBadAddress(t *testing.T) {
	c := newTestClient(t, t.TempDir())
	require.Error(t, c.Connect("not an address"))
}

type recordingConnector struct {
	calls   []string
	timeout uint
}

func (r *recordingConnector) Connect(addr string) error {
	r.calls = append(r.calls, "connect "+addr)
	return nil
}

func (r *recordingConnector) Get(filename string) error {
	r.calls = append(r.calls, "get "+filename)
	return nil
}

func (r *recordingConnector) Put(filename string) error {
	r.calls = append(r.calls, "put "+filename)
	return utils.ErrFileNotFound
}

func (r *recordingConnector) SetTimeout(timeout uint) {
	r.timeout = timeout
	r.calls = append(r.calls, "timeout")
}

func (r *recordingConnector) SetTrace() {
	r.calls = append(r.calls, "trace")
}

func (r *recordingConnector) Close() error {
	return nil
}

func TestCliCommands(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"connect localhost 6969",
		"get a.txt",
		"",
		"put b.txt",
		"timeout 3",
		"trace",
		"help",
		"bogus",
		"quit",
		"get never.txt",
	}, "\n"))

	var out bytes.Buffer

	conn := &recordingConnector{}
	require.NoError(t, NewCli(zaptest.NewLogger(t).Sugar(), conn, in, &out).Read())

	assert.Equal(t, []string{
		"connect localhost:6969",
		"get a.txt",
		"put b.txt",
		"timeout",
		"trace",
	}, conn.calls)
	assert.Equal(t, uint(3), conn.timeout)
	assert.Contains(t, out.String(), "connect <host> <port>")
	assert.Contains(t, out.String(), utils.ErrFileNotFound.Error())
	assert.Contains(t, out.String(), "unknown command arguments: bogus")
}
