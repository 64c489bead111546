package types

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Wa4h1h/go-tftp-client/pkg/utils"
)

// RemoteError is an ERROR packet received from the peer. It matches, with
// errors.Is, the sentinel in utils for its code; code 0 and codes above 7
// match utils.ErrNotDefined.
type RemoteError struct {
	Msg  string
	Code ErrCode
}

func (r *RemoteError) Error() string {
	if r.Msg == "" {
		return fmt.Sprintf("%s (code %d)", r.Unwrap().Error(), r.Code)
	}

	return fmt.Sprintf("%s (code %d): %s", r.Unwrap().Error(), r.Code, r.Msg)
}

func (r *RemoteError) Unwrap() error {
	switch r.Code {
	case ErrFileNotFound:
		return utils.ErrFileNotFound
	case ErrAccessViolation:
		return utils.ErrAccessViolation
	case ErrDiskFull:
		return utils.ErrDiskFull
	case ErrIllegalTftpOp:
		return utils.ErrIllegalOperation
	case ErrUnknownTransferId:
		return utils.ErrUnknownTransferID
	case ErrFileAlreadyExists:
		return utils.ErrFileAlreadyExists
	case ErrNoSuchUser:
		return utils.ErrNoSuchUser
	default:
		return utils.ErrNotDefined
	}
}

// MapError maps an error code and the raw message bytes that follow it in an
// ERROR packet to a transfer error.
func MapError(code ErrCode, msg []byte) error {
	return &RemoteError{Code: code, Msg: decodeMessage(msg)}
}

// decodeMessage cuts msg at the first NUL and replaces every maximal invalid
// UTF-8 subsequence with one U+FFFD.
func decodeMessage(msg []byte) string {
	if i := bytes.IndexByte(msg, 0); i >= 0 {
		msg = msg[:i]
	}

	var b strings.Builder

	b.Grow(len(msg))

	for len(msg) > 0 {
		r, size := utf8.DecodeRune(msg)
		if r == utf8.RuneError && size <= 1 {
			b.WriteRune(utf8.RuneError)
			msg = msg[invalidPrefixLen(msg):]

			continue
		}

		b.Write(msg[:size])
		msg = msg[size:]
	}

	return b.String()
}

// invalidPrefixLen returns the length of the longest prefix of b that starts
// a well-formed sequence but does not complete it, or 1.
func invalidPrefixLen(b []byte) int {
	lo, hi, n := byte(0x80), byte(0xbf), 0

	switch c := b[0]; {
	case c >= 0xc2 && c <= 0xdf:
		n = 2
	case c == 0xe0:
		lo, n = 0xa0, 3
	case c == 0xed:
		hi, n = 0x9f, 3
	case c >= 0xe1 && c <= 0xef:
		n = 3
	case c == 0xf0:
		lo, n = 0x90, 4
	case c >= 0xf1 && c <= 0xf3:
		n = 4
	case c == 0xf4:
		hi, n = 0x8f, 4
	default:
		return 1
	}

	i := 1
	for ; i < n && i < len(b); i++ {
		if b[i] < lo || b[i] > hi {
			break
		}

		lo, hi = 0x80, 0xbf
	}

	return i
}

// InvalidResponseError carries a datagram that could not be handled in the
// current transfer state.
type InvalidResponseError struct {
	Err error
	Raw []byte
}

func NewInvalidResponse(raw []byte, err error) *InvalidResponseError {
	cp := make([]byte, len(raw))
	copy(cp, raw)

	return &InvalidResponseError{Raw: cp, Err: err}
}

func (i *InvalidResponseError) Error() string {
	if i.Err == nil {
		return fmt.Sprintf("%s: % x", utils.ErrInvalidResponse.Error(), i.Raw)
	}

	return fmt.Sprintf("%s: %s: % x", utils.ErrInvalidResponse.Error(), i.Err.Error(), i.Raw)
}

func (i *InvalidResponseError) Unwrap() []error {
	if i.Err == nil {
		return []error{utils.ErrInvalidResponse}
	}

	return []error{utils.ErrInvalidResponse, i.Err}
}

// TransportError wraps a failure of the underlying datagram channel.
type TransportError struct {
	Err error
	Op  string
}

func (t *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %s", utils.ErrTransport.Error(), t.Op, t.Err.Error())
}

func (t *TransportError) Unwrap() []error {
	return []error{utils.ErrTransport, t.Err}
}
