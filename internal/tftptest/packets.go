// Package tftptest provides scripted TFTP peers and transports for tests.
package tftptest

import (
	"bytes"

	"github.com/Wa4h1h/go-tftp-client/pkg/types"
)

func RRQ(filename string) []byte {
	return must(types.EncodeRequest(types.OpCodeRRQ, filename))
}

func WRQ(filename string) []byte {
	return must(types.EncodeRequest(types.OpCodeWRQ, filename))
}

func Data(block uint16, payload []byte) []byte {
	return must(types.EncodeData(block, payload))
}

func Ack(block uint16) []byte {
	return types.EncodeAck(block)
}

func Error(code types.ErrCode, msg string) []byte {
	return must(types.EncodeError(code, msg))
}

// Payload returns n bytes of printable text without line endings.
func Payload(n int) []byte {
	return bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz012345"), n/32+1)[:n:n]
}

func must(b []byte, err error) []byte {
	if err != nil {
		panic(err)
	}

	return b
}
