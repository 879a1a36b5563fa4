// Package protocol implements the burst trace framing used on the debug UART.
//
// A frame is laid out the way Klipper lays out its message blocks:
//
//	len | kind | payload (VLQ fields) | crc16 hi | crc16 lo | 0x7E
//
// The burst payload is: sequence, channel count, samples in the buffer,
// samples carried, then the carried samples as signed VLQs.
package protocol

// Version is the trace format version
const Version = "1"

// Framing constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 96
	MessagePositionLen = 0
	MessagePositionKnd = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// MessageMax is the scratch buffer size; one frame always fits.
	MessageMax = 128
)

// Frame kinds
const (
	KindBurst = 0x10
)

// FrameSamplesMax is the number of samples a burst frame can carry.
const FrameSamplesMax = 16
