package client

import (
	"fmt"

	"github.com/Wa4h1h/go-tftp-client/pkg/types"
	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
)

// Put uploads data as filename. data is sliced into 512 byte blocks and never
// modified. A transfer always ends with a block shorter than 512 bytes, so an
// empty file or one whose size is a multiple of 512 ends with an empty block.
func (t *Transfer) Put(filename string, data []byte) error {
	t.start()
	defer t.finish()

	if t.cfg.netascii {
		encoded, err := toNetASCII(data)
		if err != nil {
			return err
		}

		data = encoded
	}

	// block numbers do not wrap around
	if len(data) >= types.MaxBlocks*types.MaxPayloadSize {
		return utils.ErrFileTooLarge
	}

	wrq, err := types.EncodeRequest(types.OpCodeWRQ, filename)
	if err != nil {
		return fmt.Errorf("error while marshalling wrq: %w", err)
	}

	if err := t.send(wrq, t.server); err != nil {
		return err
	}

	var (
		ack       types.Ack
		nextBlock uint16 = 1
		sent      bool
		finalSent bool
	)

	datagram := make([]byte, types.DatagramSize)

	for {
		n, err := t.receive(datagram)
		if err != nil {
			return err
		}

		packet := datagram[:n]

		op, err := types.DecodeOpCode(packet)
		if err != nil {
			return types.NewInvalidResponse(packet, err)
		}

		switch op {
		case types.OpCodeACK:
			if err := ack.UnmarshalBinary(packet); err != nil {
				return types.NewInvalidResponse(packet, err)
			}

			// the first ACK after the final block ends the transfer
			if finalSent {
				t.cfg.l.Debugf("sent %d blocks, sent %d bytes", nextBlock, len(data))

				return nil
			}

			if sent && ack.BlockNum == nextBlock {
				nextBlock++
			} else if t.cfg.trace {
				t.cfg.l.Debugf("ack block#=%d, resending block#=%d", ack.BlockNum, nextBlock)
			}

			start := (int(nextBlock) - 1) * types.MaxPayloadSize
			end := min(start+types.MaxPayloadSize, len(data))
			block := data[start:end]
			finalSent = len(block) < types.MaxPayloadSize

			b, err := types.EncodeData(nextBlock, block)
			if err != nil {
				return fmt.Errorf("error while marshalling data packet: %w", err)
			}

			if err := t.send(b, t.peer); err != nil {
				return err
			}

			sent = true

			if t.cfg.trace {
				t.cfg.l.Debugf("sent block#=%d, sent #bytes=%d", nextBlock, len(block))
			}
		case types.OpCodeError:
			return remoteError(packet)
		default:
			return types.NewInvalidResponse(packet, fmt.Errorf("%w: unexpected %s", utils.ErrWrongOpCode, op))
		}
	}
}
