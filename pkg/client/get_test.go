package client

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Wa4h1h/go-tftp-client/internal/tftptest"
	"github.com/Wa4h1h/go-tftp-client/pkg/types"
	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	serverAddr = tftptest.Addr(69)
	peerAddr   = tftptest.Addr(40000)
)

func testOpts(t *testing.T, opts ...Option) []Option {
	return append([]Option{WithLogger(zaptest.NewLogger(t).Sugar()), WithTrace(true)}, opts...)
}

func fromPeer(packets ...[]byte) []tftptest.Reply {
	replies := make([]tftptest.Reply, 0, len(packets))
	for _, p := range packets {
		replies = append(replies, tftptest.Reply{From: peerAddr, Data: p})
	}

	return replies
}

func TestGetTwoBlocks(t *testing.T) {
	first := tftptest.Payload(512)
	second := bytes.Repeat([]byte{'z'}, 300)

	tr := tftptest.NewTransport(fromPeer(
		tftptest.Data(1, first),
		tftptest.Data(2, second),
	)...)

	got, err := GetFile("cool.txt", tr, serverAddr, testOpts(t)...)
	require.NoError(t, err)

	expected := append(append([]byte{}, first...), second...)
	assert.Len(t, got, 812)
	assert.Equal(t, expected, got)

	sent := tr.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, tftptest.RRQ("cool.txt"), sent[0].Data)
	assert.Equal(t, serverAddr, sent[0].To)
	assert.Equal(t, tftptest.Ack(1), sent[1].Data)
	assert.Equal(t, peerAddr, sent[1].To)
	assert.Equal(t, tftptest.Ack(2), sent[2].Data)
	assert.Equal(t, peerAddr, sent[2].To)
}

func TestGetExactMultiple(t *testing.T) {
	payload := tftptest.Payload(512)

	tr := tftptest.NewTransport(fromPeer(
		tftptest.Data(1, payload),
		tftptest.Data(2, nil),
	)...)

	got, err := GetFile("cool.txt", tr, serverAddr, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, [][]byte{tftptest.RRQ("cool.txt"), tftptest.Ack(1), tftptest.Ack(2)}, tr.SentData())
}

func TestGetEmptyFile(t *testing.T) {
	tr := tftptest.NewTransport(fromPeer(tftptest.Data(1, nil))...)

	got, err := GetFile("empty", tr, serverAddr, testOpts(t)...)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetServerError(t *testing.T) {
	tr := tftptest.NewTransport(fromPeer(tftptest.Error(types.ErrFileNotFound, "file not found"))...)

	got, err := GetFile("missing.txt", tr, serverAddr, testOpts(t)...)
	require.ErrorIs(t, err, utils.ErrFileNotFound)
	assert.Nil(t, got)
	assert.Equal(t, [][]byte{tftptest.RRQ("missing.txt")}, tr.SentData())
}

func TestGetErrorDiscardsPartialFile(t *testing.T) {
	tr := tftptest.NewTransport(fromPeer(
		tftptest.Data(1, tftptest.Payload(512)),
		tftptest.Error(types.ErrNotDefined, "server went away"),
	)...)

	got, err := GetFile("cool.txt", tr, serverAddr, testOpts(t)...)
	require.ErrorIs(t, err, utils.ErrNotDefined)
	assert.Nil(t, got)

	var remote *types.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "server went away", remote.Msg)
}

func TestGetInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "opcode zero", raw: []byte{0x00, 0x00, 0x00, 0x01}},
		{name: "opcode six", raw: []byte{0x00, 0x06, 0x00, 0x01, 'x'}},
		{name: "opcode high byte", raw: []byte{0x01, 0x03, 0x00, 0x01}},
		{name: "single byte", raw: []byte{0x03}},
		{name: "ack", raw: tftptest.Ack(1)},
		{name: "request", raw: tftptest.WRQ("x")},
		{name: "truncated data", raw: []byte{0x00, 0x03, 0x00}},
		{name: "truncated error", raw: []byte{0x00, 0x05, 0x00}},
		{name: "oversized data", raw: append(tftptest.Data(1, tftptest.Payload(512)), 'x')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := append([]byte(nil), tt.raw...)
			tr := tftptest.NewTransport(fromPeer(raw)...)

			got, err := GetFile("cool.txt", tr, serverAddr, testOpts(t)...)
			require.ErrorIs(t, err, utils.ErrInvalidResponse)
			assert.Nil(t, got)

			var invalid *types.InvalidResponseError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.raw, invalid.Raw)
		})
	}
}

func TestGetAcknowledgesDuplicateOnce(t *testing.T) {
	first := tftptest.Payload(512)

	tr := tftptest.NewTransport(fromPeer(
		tftptest.Data(1, first),
		tftptest.Data(1, first),
		tftptest.Data(2, []byte("tail")),
	)...)

	got, err := GetFile("cool.txt", tr, serverAddr, testOpts(t)...)
	require.NoError(t, err)
	assert.Len(t, got, 516)
	assert.Equal(t, [][]byte{
		tftptest.RRQ("cool.txt"),
		tftptest.Ack(1),
		tftptest.Ack(1),
		tftptest.Ack(2),
	}, tr.SentData())
}

func TestGetAcknowledgesReceivedBlockNumber(t *testing.T) {
	tr := tftptest.NewTransport(fromPeer(tftptest.Data(7, []byte("short")))...)

	got, err := GetFile("cool.txt", tr, serverAddr, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), got)
	assert.Equal(t, tftptest.Ack(7), tr.SentData()[1])
}

func TestGetFilenameWithNull(t *testing.T) {
	tr := tftptest.NewTransport()

	_, err := GetFile("bad\x00name", tr, serverAddr, testOpts(t)...)
	require.ErrorIs(t, err, utils.ErrFilenameContainsNull)
	assert.Empty(t, tr.Sent())
}
