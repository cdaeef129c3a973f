package engine

import (
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/csyager/pong/internal/config"
	"github.com/csyager/pong/internal/wire"
)

// Register assigns conn the lowest inactive slot and returns its
// 1-based player id. Returns ok=false if every slot is already
// active (the room is full).
func (e *Engine) Register(conn net.Conn) (playerID int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.slots {
		if e.slots[i].Active {
			continue
		}
		e.slots[i] = Slot{PlayerID: i + 1, Conn: conn, Active: true}
		e.playerPositions[i] = wire.Position{}
		if e.logger != nil {
			e.logger.Info("player registered", zap.Int("player_id", i+1))
		}
		return i + 1, true
	}
	return 0, false
}

// Release marks the slot held by conn inactive, if any, and clears
// its learned datagram address. It does not close conn; the caller
// owns the connection's lifecycle.
func (e *Engine) Release(conn net.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseLocked(conn)
}

func (e *Engine) releaseLocked(conn net.Conn) {
	for i := range e.slots {
		if e.slots[i].Active && e.slots[i].Conn == conn {
			id := e.slots[i].PlayerID
			e.slots[i] = Slot{}
			if e.logger != nil {
				e.logger.Info("player released", zap.Int("player_id", id))
			}
			return
		}
	}
}

// IngestPosition applies a client-reported paddle position for the
// slot named by id (the PositionMessage's self-declared id, trusted
// as-is rather than resolved from addr) and records addr as that
// slot's current datagram return address. Reports whether id named
// an active slot.
func (e *Engine) IngestPosition(id uint32, pos wire.Position, addr *net.UDPAddr) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := int(id) - 1
	if idx < 0 || idx >= config.MaxClients || !e.slots[idx].Active {
		return false
	}
	e.slots[idx].Addr = addr
	e.playerPositions[idx] = pos
	return true
}

// RegisterResponse builds the TcpResponse for a registration attempt,
// advertising the board constants and tickRateMS alongside the
// assigned player id when ok.
func (e *Engine) RegisterResponse(playerID int, ok bool, tickRateMS uint32) wire.TcpResponse {
	if !ok {
		return wire.TcpResponse{StatusCode: wire.StatusRoomFull}
	}
	payload := wire.RegisterResponsePayload(
		uint32(playerID),
		uint32(config.Cols),
		uint32(config.Rows),
		config.BallRadius,
		config.PlayerLength,
		tickRateMS,
	)
	return wire.TcpResponse{StatusCode: wire.StatusOK, Payload: payload}
}

func (e *Engine) allActiveLocked() bool {
	for i := range e.slots {
		if !e.slots[i].Active {
			return false
		}
	}
	return true
}

// broadcastStreamLocked writes frame to every active stream
// connection. A write error drops that slot rather than aborting the
// whole broadcast, since one bad peer shouldn't stall the others.
func (e *Engine) broadcastStreamLocked(frame []byte) {
	for i := range e.slots {
		if !e.slots[i].Active {
			continue
		}
		if err := writeFull(e.slots[i].Conn, frame); err != nil {
			if e.logger != nil {
				e.logger.Warn("stream broadcast failed, dropping slot",
					zap.Int("player_id", e.slots[i].PlayerID), zap.Error(err))
			}
			e.slots[i] = Slot{}
		}
	}
}

// broadcastDatagramLocked sends frame to every active slot with a
// known return address. Datagram sends are best-effort: a failure is
// logged but never deactivates the slot, since UDP loss is routine.
func (e *Engine) broadcastDatagramLocked(conn DatagramWriter, frame []byte) {
	for i := range e.slots {
		if !e.slots[i].Active || e.slots[i].Addr == nil {
			continue
		}
		if _, err := conn.WriteToUDP(frame, e.slots[i].Addr); err != nil {
			if e.logger != nil {
				e.logger.Debug("datagram send failed",
					zap.Int("player_id", e.slots[i].PlayerID), zap.Error(err))
			}
		}
	}
}

func writeFull(conn net.Conn, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := conn.Write(buf[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		total += n
	}
	return nil
}
