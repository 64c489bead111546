package utils

import "errors"

// codec
var (
	ErrWrongOpCode          = errors.New("error: invalid operation code")
	ErrDataPayloadTooBig    = errors.New("error: payload exceeds 512 bytes")
	ErrPacketTooShort       = errors.New("error: packet too short")
	ErrFilenameContainsNull = errors.New("error: filename contains a null byte")
)

// errors reported by the remote peer
var (
	ErrNotDefined        = errors.New("error: not defined")
	ErrFileNotFound      = errors.New("error: file not found")
	ErrAccessViolation   = errors.New("error: access violation")
	ErrDiskFull          = errors.New("error: disk full or allocation exceeded")
	ErrIllegalOperation  = errors.New("error: illegal tftp operation")
	ErrUnknownTransferID = errors.New("error: unknown transfer id")
	ErrFileAlreadyExists = errors.New("error: file already exists")
	ErrNoSuchUser        = errors.New("error: no such user")
)

// local transfer errors
var (
	ErrInvalidResponse = errors.New("error: invalid response")
	ErrTransport       = errors.New("error: transport failure")
	ErrTransferTimeout = errors.New("error: transfer timed out")
	ErrFileTooLarge    = errors.New("error: file too large to be transferred over tftp")
	ErrNotConnected    = errors.New("error: client is not connected")
)
