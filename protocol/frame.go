package protocol

import "errors"

var (
	ErrFrameLength = errors.New("frame length out of range")
	ErrFrameSync   = errors.New("frame sync byte missing")
	ErrFrameCRC    = errors.New("frame CRC mismatch")
	ErrFrameKind   = errors.New("unknown frame kind")
	ErrFrameFields = errors.New("malformed burst frame")
)

// BurstFrame is the trace record of one completed buffer.
type BurstFrame struct {
	Sequence uint32
	Channels uint8
	Total    uint16 // samples in the delivered buffer
	Count    uint8  // samples carried in this frame, <= FrameSamplesMax
	Samples  [FrameSamplesMax]int16
}

// Carried returns the carried samples.
func (f *BurstFrame) Carried() []int16 {
	return f.Samples[:f.Count]
}

// Truncated reports whether the buffer held more samples than the frame carries.
func (f *BurstFrame) Truncated() bool {
	return int(f.Count) < int(f.Total)
}

// EncodeBurstFrame appends a complete frame for f to output.
func EncodeBurstFrame(output OutputBuffer, f *BurstFrame) {
	start := output.CurPosition()
	output.OutputByte(0) // length, patched below
	output.OutputByte(KindBurst)

	count := f.Count
	if count > FrameSamplesMax {
		count = FrameSamplesMax
	}
	EncodeVLQUint(output, f.Sequence)
	EncodeVLQUint(output, uint32(f.Channels))
	EncodeVLQUint(output, uint32(f.Total))
	EncodeVLQUint(output, uint32(count))
	for _, s := range f.Samples[:count] {
		EncodeVLQInt(output, int32(s))
	}

	length := output.CurPosition() - start + MessageTrailerSize
	output.Update(start+MessagePositionLen, byte(length))
	crc := CRC16(output.DataSince(start))
	output.OutputByte(byte(crc >> 8))
	output.OutputByte(byte(crc))
	output.OutputByte(MessageValueSync)
}

// ParseFrame validates the frame at the start of data. It returns the
// frame length; a zero length with nil error means more data is needed.
func ParseFrame(data []byte, f *BurstFrame) (int, error) {
	if len(data) < MessageLengthMin {
		return 0, nil
	}
	msgLen := int(data[MessagePositionLen])
	if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
		return 0, ErrFrameLength
	}
	if len(data) < msgLen {
		return 0, nil
	}
	if data[msgLen-MessageTrailerSync] != MessageValueSync {
		return 0, ErrFrameSync
	}
	frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
		uint16(data[msgLen-MessageTrailerCRC+1])
	if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
		return 0, ErrFrameCRC
	}
	if data[MessagePositionKnd] != KindBurst {
		return 0, ErrFrameKind
	}

	payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
	if err := decodeBurst(&payload, f); err != nil {
		return 0, err
	}
	return msgLen, nil
}

func decodeBurst(payload *[]byte, f *BurstFrame) error {
	seq, err := DecodeVLQUint(payload)
	if err != nil {
		return err
	}
	channels, err := DecodeVLQUint(payload)
	if err != nil {
		return err
	}
	total, err := DecodeVLQUint(payload)
	if err != nil {
		return err
	}
	count, err := DecodeVLQUint(payload)
	if err != nil {
		return err
	}
	if channels == 0 || channels > 255 || total > 0xFFFF || count > FrameSamplesMax || count > total {
		return ErrFrameFields
	}
	f.Sequence = seq
	f.Channels = uint8(channels)
	f.Total = uint16(total)
	f.Count = uint8(count)
	for i := 0; i < int(count); i++ {
		v, err := DecodeVLQInt(payload)
		if err != nil {
			return err
		}
		f.Samples[i] = int16(v)
	}
	if len(*payload) != 0 {
		return ErrFrameFields
	}
	return nil
}

// FrameReader reassembles frames from a byte stream. After a bad frame it
// discards input up to the next sync byte, like the Klipper transport.
type FrameReader struct {
	fifo   *FifoBuffer
	synced bool
	errors uint32
}

// NewFrameReader creates a reader with room for capacity pending bytes.
func NewFrameReader(capacity int) *FrameReader {
	if capacity < 2*MessageLengthMax {
		capacity = 2 * MessageLengthMax
	}
	return &FrameReader{fifo: NewFifoBuffer(capacity), synced: true}
}

// Write queues received bytes and returns how many were accepted.
func (r *FrameReader) Write(p []byte) int {
	return r.fifo.Write(p)
}

// Free returns how many bytes Write can accept.
func (r *FrameReader) Free() int {
	return r.fifo.Free()
}

// Next decodes the next complete frame into f. It returns false when more
// input is needed.
func (r *FrameReader) Next(f *BurstFrame) bool {
	for !r.fifo.IsEmpty() {
		data := r.fifo.Data()
		if !r.synced {
			pos := -1
			for i, b := range data {
				if b == MessageValueSync {
					pos = i
					break
				}
			}
			if pos < 0 {
				r.fifo.Pop(len(data))
				return false
			}
			r.fifo.Pop(pos + 1)
			r.synced = true
			continue
		}
		if data[0] == MessageValueSync {
			r.fifo.Pop(1)
			continue
		}
		n, err := ParseFrame(data, f)
		if err != nil {
			r.errors++
			r.synced = false
			r.fifo.Pop(1)
			continue
		}
		if n == 0 {
			return false
		}
		r.fifo.Pop(n)
		return true
	}
	return false
}

// Errors returns how many corrupt frames were skipped.
func (r *FrameReader) Errors() uint32 {
	return r.errors
}
