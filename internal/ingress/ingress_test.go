package ingress

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/csyager/pong/internal/engine"
	"github.com/csyager/pong/internal/wire"
)

func startMultiplexer(t *testing.T) (*Multiplexer, func()) {
	t.Helper()

	tcpLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	udpAddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)
	udpConn, err := net.ListenUDP("udp", udpAddr)
	require.NoError(t, err)

	m := &Multiplexer{
		Engine:     engine.New(nil),
		TCP:        tcpLn,
		UDP:        udpConn,
		TickRateMS: 16,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cleanup := func() {
		cancel()
		<-done
		tcpLn.Close()
		udpConn.Close()
	}
	return m, cleanup
}

func TestRegisterOverTCPAssignsPlayerID(t *testing.T) {
	m, cleanup := startMultiplexer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", m.TCP.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	req := wire.TcpMessage{Opcode: wire.OpcodeRegister}.Encode()
	_, err = conn.Write(req)
	require.NoError(t, err)

	respBuf := make([]byte, wire.TCPResponseSize)
	_, err = readFull(conn, respBuf)
	require.NoError(t, err)

	resp, err := wire.DecodeTcpResponse(respBuf)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, resp.StatusCode)
}

func TestRegisterOverTCPRejectsThirdClient(t *testing.T) {
	m, cleanup := startMultiplexer(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", m.TCP.Addr().String())
		require.NoError(t, err)
		defer conn.Close()
		_, err = conn.Write(wire.TcpMessage{Opcode: wire.OpcodeRegister}.Encode())
		require.NoError(t, err)
		buf := make([]byte, wire.TCPResponseSize)
		_, err = readFull(conn, buf)
		require.NoError(t, err)
	}

	conn, err := net.Dial("tcp", m.TCP.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(wire.TcpMessage{Opcode: wire.OpcodeRegister}.Encode())
	require.NoError(t, err)

	buf := make([]byte, wire.TCPResponseSize)
	_, err = readFull(conn, buf)
	require.NoError(t, err)
	resp, err := wire.DecodeTcpResponse(buf)
	require.NoError(t, err)
	require.Equal(t, wire.StatusRoomFull, resp.StatusCode)
}

func TestUnexpectedOpcodeIsDroppedNotDisconnected(t *testing.T) {
	m, cleanup := startMultiplexer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", m.TCP.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(wire.TcpMessage{Opcode: wire.OpcodeGameStart}.Encode())
	require.NoError(t, err)

	_, err = conn.Write(wire.TcpMessage{Opcode: wire.OpcodeRegister}.Encode())
	require.NoError(t, err)

	respBuf := make([]byte, wire.TCPResponseSize)
	_, err = readFull(conn, respBuf)
	require.NoError(t, err, "connection must survive the unexpected opcode and still complete registration")

	resp, err := wire.DecodeTcpResponse(respBuf)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, resp.StatusCode)
}

func TestPositionDatagramIsIngested(t *testing.T) {
	m, cleanup := startMultiplexer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", m.TCP.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(wire.TcpMessage{Opcode: wire.OpcodeRegister}.Encode())
	require.NoError(t, err)
	buf := make([]byte, wire.TCPResponseSize)
	_, err = readFull(conn, buf)
	require.NoError(t, err)

	udpConn, err := net.DialUDP("udp", nil, m.UDP.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer udpConn.Close()

	posMsg := wire.PositionMessage{ID: 1, Position: wire.Position{X: 5, Y: 7}}
	_, err = udpConn.Write(posMsg.Encode())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st := m.Engine.State()
		return st.PlayerPositions[0].X == 5 && st.PlayerPositions[0].Y == 7
	}, 2*time.Second, 10*time.Millisecond)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
