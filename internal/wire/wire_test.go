package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionMessageRoundTrip(t *testing.T) {
	msg := PositionMessage{
		ID: 2,
		Position: Position{
			X: 10, Y: 20, Dx: -3.5, Dy: 7.25,
		},
	}
	buf := msg.Encode()
	require.Len(t, buf, PositionSize)

	got, err := DecodePositionMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestPositionMessageLeadingFieldIsBigEndian(t *testing.T) {
	msg := PositionMessage{ID: 0x01020304}
	buf := msg.Encode()
	require.GreaterOrEqual(t, len(buf), 4)
	assert.Equal(t, buf[:4], []byte{0x01, 0x02, 0x03, 0x04})
	assert.Equal(t, binary.BigEndian.Uint32(buf[:4]), msg.ID)
}

func TestDecodePositionMessageRejectsShortBuffer(t *testing.T) {
	_, err := DecodePositionMessage(make([]byte, PositionSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestGameStateSnapshotRoundTrip(t *testing.T) {
	snap := GameStateSnapshot{
		LeftScore:      3,
		RightScore:     9,
		GameActive:     true,
		SecondsToStart: -2,
		Positions: [NumPositions]Position{
			{X: 100, Y: 25, Dx: 5, Dy: -5},
			{X: 0, Y: 10, Dx: 0, Dy: 0},
			{X: 200, Y: 40, Dx: 0, Dy: 0},
		},
	}

	buf := snap.Encode()
	require.Len(t, buf, SnapshotSize)

	got, err := DecodeGameStateSnapshot(buf)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestGameStateSnapshotIsZeroPadded(t *testing.T) {
	snap := GameStateSnapshot{LeftScore: 1}
	buf := snap.Encode()
	require.Len(t, buf, SnapshotSize)
	for i := snapshotHeaderSize + NumPositions*positionRecordSize; i < SnapshotSize; i++ {
		assert.Zero(t, buf[i], "expected trailing byte %d to be zero-padded", i)
	}
}

func TestGameStateSnapshotLeadingFieldIsScore(t *testing.T) {
	snap := GameStateSnapshot{LeftScore: 42, RightScore: 7}
	buf := snap.Encode()
	assert.Equal(t, uint8(42), buf[0])
	assert.Equal(t, uint8(7), buf[1])
}

func TestTcpMessageRoundTrip(t *testing.T) {
	msg := TcpMessage{Opcode: OpcodeGameStart}
	copy(msg.Payload[:4], []byte{1, 2, 3, 4})

	buf := msg.Encode()
	require.Len(t, buf, TCPMessageSize)

	got, err := DecodeTcpMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestTcpMessageLeadingFieldIsBigEndianOpcode(t *testing.T) {
	msg := TcpMessage{Opcode: 0x0A0B0C0D}
	buf := msg.Encode()
	assert.Equal(t, binary.BigEndian.Uint32(buf[:4]), msg.Opcode)
}

func TestDecodeTcpMessageRejectsShortBuffer(t *testing.T) {
	_, err := DecodeTcpMessage(make([]byte, TCPMessageSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestTcpResponseRoundTrip(t *testing.T) {
	payload := RegisterResponsePayload(1, 200, 50, 1.0, 2.5, 16)
	resp := TcpResponse{StatusCode: StatusOK, Payload: payload}

	buf := resp.Encode()
	require.Len(t, buf, TCPResponseSize)

	got, err := DecodeTcpResponse(buf)
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestRegisterResponsePayloadFieldOrder(t *testing.T) {
	payload := RegisterResponsePayload(2, 200, 50, 1.0, 2.5, 16)

	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(payload[0:4]))
	assert.Equal(t, uint32(200), binary.BigEndian.Uint32(payload[4:8]))
	assert.Equal(t, uint32(50), binary.BigEndian.Uint32(payload[8:12]))
	for _, b := range payload[24:] {
		assert.Zero(t, b)
	}
}

func TestDecodeGameStateSnapshotRejectsShortBuffer(t *testing.T) {
	_, err := DecodeGameStateSnapshot(make([]byte, SnapshotSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}
