// Package ingress multiplexes the two transports a client speaks:
// the TCP accept loop handles registration handshakes and a stream
// read loop's only job is to notice when a peer goes away so its slot
// can be released; the UDP read loop decodes paddle updates and feeds
// them into the engine. Both loops poll a read deadline against
// ctx.Done() rather than blocking forever, the same shutdown idiom
// the teacher's network loop uses around ReadFromUDP.
//
// Grounded on networking/server/server.go's networkLoop (teacher),
// split into one loop per transport instead of the teacher's single
// UDP-only loop, and on cppla-moto's controller/server.go for the
// per-connection accept-then-dispatch shape.
package ingress

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csyager/pong/internal/admission"
	"github.com/csyager/pong/internal/engine"
	"github.com/csyager/pong/internal/wire"
)

// pollInterval bounds how long an Accept/ReadFromUDP call can block
// before the loop re-checks ctx.Done(), so Run returns promptly after
// cancellation even with no traffic.
const pollInterval = 200 * time.Millisecond

// Multiplexer owns the TCP listener and UDP socket and routes their
// traffic into Engine.
type Multiplexer struct {
	Engine     *engine.Engine
	TCP        net.Listener
	UDP        *net.UDPConn
	Logger     *zap.Logger
	Admission  *admission.Limiter
	TickRateMS uint32
}

// Run blocks until ctx is canceled, serving both transports
// concurrently. It always returns nil; transport errors are logged
// rather than propagated, since a single bad peer must not take down
// the multiplexer.
func (m *Multiplexer) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.acceptLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		m.udpLoop(ctx)
	}()
	wg.Wait()
	return nil
}

func (m *Multiplexer) acceptLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if tl, ok := m.TCP.(*net.TCPListener); ok {
			tl.SetDeadline(time.Now().Add(pollInterval))
		}

		conn, err := m.TCP.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("accept failed", zap.Error(err))
			}
			continue
		}

		host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
		if m.Admission != nil && !m.Admission.Allow(host) {
			conn.Close()
			continue
		}

		go m.handleConn(conn)
	}
}

// handleConn reads frames until registration succeeds or the peer
// disconnects. A garbled frame or an opcode other than OpcodeRegister
// is dropped and logged rather than closing the connection, so a
// stray frame before a valid register attempt doesn't cost the peer
// its slot at the listener. Once registered it blocks discarding
// input until the peer disconnects, at which point the deferred
// release frees the registry slot. Game-start and future stream
// pushes are sent from the tick loop, not from here.
func (m *Multiplexer) handleConn(conn net.Conn) {
	defer func() {
		m.Engine.Release(conn)
		conn.Close()
	}()

	buf := make([]byte, wire.TCPMessageSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}

		msg, err := wire.DecodeTcpMessage(buf)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("dropping garbled tcp frame", zap.Error(err))
			}
			continue
		}
		if msg.Opcode != wire.OpcodeRegister {
			if m.Logger != nil {
				m.Logger.Debug("dropping unexpected tcp opcode", zap.Uint32("opcode", msg.Opcode))
			}
			continue
		}

		playerID, ok := m.Engine.Register(conn)
		resp := m.Engine.RegisterResponse(playerID, ok, m.TickRateMS)
		if err := writeFull(conn, resp.Encode()); err != nil {
			return
		}
		if !ok {
			return
		}

		io.Copy(io.Discard, conn)
		return
	}
}

func (m *Multiplexer) udpLoop(ctx context.Context) {
	buf := make([]byte, wire.PositionSize)
	for {
		if ctx.Err() != nil {
			return
		}

		m.UDP.SetReadDeadline(time.Now().Add(pollInterval))
		n, addr, err := m.UDP.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if m.Logger != nil {
				m.Logger.Debug("udp read failed", zap.Error(err))
			}
			continue
		}

		posMsg, err := wire.DecodePositionMessage(buf[:n])
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("dropping garbled udp frame", zap.Error(err))
			}
			continue
		}
		if !m.Engine.IngestPosition(posMsg.ID, posMsg.Position, addr) {
			if m.Logger != nil {
				m.Logger.Debug("dropping position update for unknown player id", zap.Uint32("id", posMsg.ID))
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
