package types

import (
	"encoding/binary"

	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
)

func EncodeRequest(op OpCode, filename string) ([]byte, error) {
	r := &Request{Opcode: op, Filename: filename, Mode: ModeNetASCII}

	return r.MarshalBinary()
}

func EncodeData(block uint16, payload []byte) ([]byte, error) {
	d := &Data{Opcode: OpCodeDATA, BlockNum: block, Payload: payload}

	return d.MarshalBinary()
}

func EncodeAck(block uint16) []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b, uint16(OpCodeACK))
	binary.BigEndian.PutUint16(b[2:], block)

	return b
}

func EncodeError(code ErrCode, msg string) ([]byte, error) {
	return NewError(code, msg).MarshalBinary()
}

// DecodeOpCode reads the opcode of a datagram.
func DecodeOpCode(b []byte) (OpCode, error) {
	if len(b) < 2 {
		return 0, utils.ErrPacketTooShort
	}

	op := OpCode(binary.BigEndian.Uint16(b))
	if op < OpCodeRRQ || op > OpCodeError {
		return op, utils.ErrWrongOpCode
	}

	return op, nil
}
