package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/yndnr/graphdev-go/internal/core/domain"
)

const (
	// headerSize is length (4) + crc (4).
	headerSize = 8

	// MaxFrameSize bounds the length field so a corrupt header cannot
	// make the reader allocate unbounded memory.
	MaxFrameSize = 16 << 20
)

// Frame errors. Codec functions return them wrapped in domain.ErrFraming,
// so callers can match either the class or the specific cause.
var (
	ErrShortFrame       = errors.New("protocol: short frame")
	ErrFrameTooLarge    = errors.New("protocol: frame exceeds maximum size")
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")
	ErrUnknownKind      = errors.New("protocol: unknown message kind")
	ErrTruncated        = errors.New("protocol: stream closed mid-frame")
)

func framingError(cause error) error {
	return domain.ErrFraming.WithDetails(cause.Error()).WithCause(cause)
}

// WriteFollower writes m to w as a single frame.
func WriteFollower(w io.Writer, m FollowerMessage) error {
	if !m.Kind.Valid() {
		return framingError(ErrUnknownKind)
	}
	return writeFrame(w, byte(m.Kind), &m)
}

// ReadFollower reads exactly one follower frame from r.
// A stream that ends before the first byte yields io.EOF.
func ReadFollower(r io.Reader) (FollowerMessage, error) {
	kind, payload, err := readFrame(r)
	if err != nil {
		return FollowerMessage{}, err
	}
	var m FollowerMessage
	if !FollowerKind(kind).Valid() {
		return m, framingError(ErrUnknownKind)
	}
	if err := decodePayload(payload, &m); err != nil {
		return FollowerMessage{}, err
	}
	m.Kind = FollowerKind(kind)
	return m, nil
}

// WriteLeader writes m to w as a single frame.
func WriteLeader(w io.Writer, m LeaderMessage) error {
	if !m.Kind.Valid() {
		return framingError(ErrUnknownKind)
	}
	return writeFrame(w, byte(m.Kind), &m)
}

// ReadLeader reads exactly one leader frame from r.
// A stream that ends before the first byte yields io.EOF.
func ReadLeader(r io.Reader) (LeaderMessage, error) {
	kind, payload, err := readFrame(r)
	if err != nil {
		return LeaderMessage{}, err
	}
	var m LeaderMessage
	if !LeaderKind(kind).Valid() {
		return m, framingError(ErrUnknownKind)
	}
	if err := decodePayload(payload, &m); err != nil {
		return LeaderMessage{}, err
	}
	m.Kind = LeaderKind(kind)
	return m, nil
}

func writeFrame(w io.Writer, kind byte, v any) error {
	var payload bytes.Buffer
	if err := codec.NewEncoder(&payload, &codec.MsgpackHandle{}).Encode(v); err != nil {
		return fmt.Errorf("protocol: encode payload: %w", err)
	}

	// Length = CRC(4) + Kind(1) + Payload.
	length := 4 + 1 + payload.Len()
	if length > MaxFrameSize {
		return framingError(ErrFrameTooLarge)
	}

	crc := crc32.NewIEEE()
	crc.Write([]byte{kind})
	crc.Write(payload.Bytes())

	out := make([]byte, 0, 4+length)
	out = binary.BigEndian.AppendUint32(out, uint32(length))
	out = binary.BigEndian.AppendUint32(out, crc.Sum32())
	out = append(out, kind)
	out = append(out, payload.Bytes()...)

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("protocol: write frame: %w", err)
	}
	return nil
}

func readFrame(r io.Reader) (byte, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.EOF
		}
		return 0, nil, framingError(fmt.Errorf("%w: %w", ErrShortFrame, err))
	}

	length := binary.BigEndian.Uint32(header[:4])
	wantCRC := binary.BigEndian.Uint32(header[4:])
	if length < 5 {
		return 0, nil, framingError(ErrShortFrame)
	}
	if length > MaxFrameSize {
		return 0, nil, framingError(ErrFrameTooLarge)
	}

	// The crc was already consumed with the header.
	body := make([]byte, length-4)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, framingError(fmt.Errorf("%w: %w", ErrTruncated, err))
	}

	if crc32.ChecksumIEEE(body) != wantCRC {
		return 0, nil, framingError(ErrChecksumMismatch)
	}
	return body[0], body[1:], nil
}

func decodePayload(payload []byte, v any) error {
	if err := codec.NewDecoderBytes(payload, &codec.MsgpackHandle{}).Decode(v); err != nil {
		return domain.ErrFraming.WithDetails("decode payload").WithCause(err)
	}
	return nil
}
