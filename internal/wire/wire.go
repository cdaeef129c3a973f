// Package wire implements the fixed-width, big-endian binary frames
// exchanged between the pong server and its clients. Every type here
// is a value type with pure Encode/Decode functions: no I/O, no
// hidden allocation beyond the caller-supplied buffer where practical.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// Frame sizes, fixed by the wire format.
const (
	PositionSize    = 20
	SnapshotSize    = 256
	TCPMessageSize  = 260
	TCPResponseSize = 260

	positionRecordSize = 16
	snapshotHeaderSize = 1 + 1 + 1 + 4 + 4 // scores + active flag + seconds_to_start + num_positions

	// NumPositions is the fixed position count carried by every
	// snapshot: ball first, then one entry per paddle slot.
	NumPositions = 3
)

// TcpMessage opcodes.
const (
	OpcodeRegister  uint32 = 0
	OpcodeGameStart uint32 = 1
)

// TcpResponse status codes.
const (
	StatusOK       uint32 = 0
	StatusRoomFull uint32 = 1
)

// ErrShortBuffer is returned when a decoder is handed fewer bytes
// than its frame requires.
var ErrShortBuffer = errors.New("wire: buffer shorter than frame")

// Position is a ball or paddle kinematic sample: world-unit
// coordinates plus velocity. The same 16-byte layout is used for the
// ball and for every paddle slot in a snapshot.
type Position struct {
	X, Y   float32
	Dx, Dy float32
}

func putFloat32(buf []byte, v float32) {
	binary.BigEndian.PutUint32(buf, math.Float32bits(v))
}

func getFloat32(buf []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(buf))
}

// Encode writes the position's 16-byte wire form into buf[0:16].
func (p Position) Encode(buf []byte) {
	putFloat32(buf[0:4], p.X)
	putFloat32(buf[4:8], p.Y)
	putFloat32(buf[8:12], p.Dx)
	putFloat32(buf[12:16], p.Dy)
}

// DecodePosition reads a 16-byte position record from buf[0:16].
func DecodePosition(buf []byte) Position {
	return Position{
		X:  getFloat32(buf[0:4]),
		Y:  getFloat32(buf[4:8]),
		Dx: getFloat32(buf[8:12]),
		Dy: getFloat32(buf[12:16]),
	}
}

// PositionMessage is the 20-byte client->server paddle update: a
// self-declared sender id followed by a Position.
type PositionMessage struct {
	ID       uint32
	Position Position
}

// Encode returns the 20-byte wire form of m.
func (m PositionMessage) Encode() []byte {
	buf := make([]byte, PositionSize)
	binary.BigEndian.PutUint32(buf[0:4], m.ID)
	m.Position.Encode(buf[4:20])
	return buf
}

// DecodePositionMessage decodes a PositionMessage frame. It rejects
// buffers shorter than PositionSize; an out-of-range id is not an
// error here, the caller (the registry) decides whether to honor it.
func DecodePositionMessage(buf []byte) (PositionMessage, error) {
	if len(buf) < PositionSize {
		return PositionMessage{}, ErrShortBuffer
	}
	return PositionMessage{
		ID:       binary.BigEndian.Uint32(buf[0:4]),
		Position: DecodePosition(buf[4:20]),
	}, nil
}

// GameStateSnapshot is the server->client authoritative world frame,
// always padded to exactly SnapshotSize bytes on the wire.
type GameStateSnapshot struct {
	LeftScore      uint8
	RightScore     uint8
	GameActive     bool
	SecondsToStart int32
	Positions      [NumPositions]Position
}

// Encode zero-pads and returns the 256-byte wire form of s. Ball is
// always at Positions[0]; paddles follow in slot order.
func (s GameStateSnapshot) Encode() []byte {
	buf := make([]byte, SnapshotSize)
	buf[0] = s.LeftScore
	buf[1] = s.RightScore
	if s.GameActive {
		buf[2] = 1
	}
	binary.BigEndian.PutUint32(buf[3:7], uint32(s.SecondsToStart))
	binary.BigEndian.PutUint32(buf[7:11], uint32(NumPositions))

	offset := snapshotHeaderSize
	for i := 0; i < NumPositions; i++ {
		s.Positions[i].Encode(buf[offset : offset+positionRecordSize])
		offset += positionRecordSize
	}
	// Remainder of buf is already zero from make().
	return buf
}

// DecodeGameStateSnapshot decodes a snapshot frame. Per the round-trip
// law this only needs to handle num_positions == NumPositions, but it
// tolerates a smaller count (reading only what is declared) rather
// than failing, since nothing about the header is otherwise invalid.
func DecodeGameStateSnapshot(buf []byte) (GameStateSnapshot, error) {
	if len(buf) < SnapshotSize {
		return GameStateSnapshot{}, ErrShortBuffer
	}
	var s GameStateSnapshot
	s.LeftScore = buf[0]
	s.RightScore = buf[1]
	s.GameActive = buf[2] != 0
	s.SecondsToStart = int32(binary.BigEndian.Uint32(buf[3:7]))

	numPositions := binary.BigEndian.Uint32(buf[7:11])
	count := int(numPositions)
	if count > NumPositions {
		count = NumPositions
	}
	offset := snapshotHeaderSize
	for i := 0; i < count; i++ {
		s.Positions[i] = DecodePosition(buf[offset : offset+positionRecordSize])
		offset += positionRecordSize
	}
	return s, nil
}

// TcpMessage is the 260-byte client<->server stream control frame.
type TcpMessage struct {
	Opcode  uint32
	Payload [256]byte
}

// Encode returns the 260-byte wire form of m.
func (m TcpMessage) Encode() []byte {
	buf := make([]byte, TCPMessageSize)
	binary.BigEndian.PutUint32(buf[0:4], m.Opcode)
	copy(buf[4:260], m.Payload[:])
	return buf
}

// DecodeTcpMessage decodes a TcpMessage frame.
func DecodeTcpMessage(buf []byte) (TcpMessage, error) {
	if len(buf) < TCPMessageSize {
		return TcpMessage{}, ErrShortBuffer
	}
	var m TcpMessage
	m.Opcode = binary.BigEndian.Uint32(buf[0:4])
	copy(m.Payload[:], buf[4:260])
	return m, nil
}

// TcpResponse is the 260-byte server->client stream reply frame.
type TcpResponse struct {
	StatusCode uint32
	Payload    [256]byte
}

// Encode returns the 260-byte wire form of r.
func (r TcpResponse) Encode() []byte {
	buf := make([]byte, TCPResponseSize)
	binary.BigEndian.PutUint32(buf[0:4], r.StatusCode)
	copy(buf[4:260], r.Payload[:])
	return buf
}

// DecodeTcpResponse decodes a TcpResponse frame.
func DecodeTcpResponse(buf []byte) (TcpResponse, error) {
	if len(buf) < TCPResponseSize {
		return TcpResponse{}, ErrShortBuffer
	}
	var r TcpResponse
	r.StatusCode = binary.BigEndian.Uint32(buf[0:4])
	copy(r.Payload[:], buf[4:260])
	return r, nil
}

// RegisterResponsePayload builds the payload of a successful register
// TcpResponse: assigned_player_id followed by the board constants a
// client needs to render the match, per the register-response
// extension documented in the design notes. Field order: player id,
// cols, rows, ball radius (f32 bits), paddle side length (f32 bits),
// tick period in milliseconds. Remaining bytes are zero.
func RegisterResponsePayload(playerID, cols, rows uint32, ballRadius, playerLength float32, tickRateMS uint32) [256]byte {
	var payload [256]byte
	binary.BigEndian.PutUint32(payload[0:4], playerID)
	binary.BigEndian.PutUint32(payload[4:8], cols)
	binary.BigEndian.PutUint32(payload[8:12], rows)
	binary.BigEndian.PutUint32(payload[12:16], math.Float32bits(ballRadius))
	binary.BigEndian.PutUint32(payload[16:20], math.Float32bits(playerLength))
	binary.BigEndian.PutUint32(payload[20:24], tickRateMS)
	return payload
}
