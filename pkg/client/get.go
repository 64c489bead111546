package client

import (
	"fmt"

	"github.com/Wa4h1h/go-tftp-client/pkg/types"
	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
)

// Get downloads filename. The whole file is returned once the final DATA
// packet is acknowledged; on any error nothing is returned.
func (t *Transfer) Get(filename string) ([]byte, error) {
	t.start()
	defer t.finish()

	rrq, err := types.EncodeRequest(types.OpCodeRRQ, filename)
	if err != nil {
		return nil, fmt.Errorf("error while marshalling rrq: %w", err)
	}

	if err := t.send(rrq, t.server); err != nil {
		return nil, err
	}

	var (
		data      types.Data
		file      []byte
		lastBlock uint16
		received  bool
	)

	// one spare byte so oversized datagrams fail to decode instead of being
	// silently truncated
	datagram := make([]byte, types.DatagramSize+1)

	for {
		n, err := t.receive(datagram)
		if err != nil {
			return nil, err
		}

		packet := datagram[:n]

		op, err := types.DecodeOpCode(packet)
		if err != nil {
			return nil, types.NewInvalidResponse(packet, err)
		}

		switch op {
		case types.OpCodeDATA:
			if err := data.UnmarshalBinary(packet); err != nil {
				return nil, types.NewInvalidResponse(packet, err)
			}

			if err := t.send(types.EncodeAck(data.BlockNum), t.peer); err != nil {
				return nil, err
			}

			if received && data.BlockNum == lastBlock {
				t.cfg.l.Debugf("duplicate block#=%d acknowledged again", data.BlockNum)

				continue
			}

			file = append(file, data.Payload...)
			received, lastBlock = true, data.BlockNum

			if t.cfg.trace {
				t.cfg.l.Debugf("received block#=%d, received #bytes=%d", data.BlockNum, len(data.Payload))
			}

			if n < types.DatagramSize {
				t.cfg.l.Debugf("received %d blocks, received %d bytes", lastBlock, len(file))

				if t.cfg.netascii {
					return fromNetASCII(file)
				}

				if file == nil {
					file = []byte{}
				}

				return file, nil
			}
		case types.OpCodeError:
			return nil, remoteError(packet)
		default:
			return nil, types.NewInvalidResponse(packet, fmt.Errorf("%w: unexpected %s", utils.ErrWrongOpCode, op))
		}
	}
}
