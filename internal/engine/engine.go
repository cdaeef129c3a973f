// Package engine owns the single mutex-protected unit of state the
// design calls out explicitly: the World (ball, paddles, scores,
// phase) and the client registry (slots, stream conns, learned
// datagram addresses). Both are mutated under the same lock, which
// is the "Threaded" concurrency variant at MAX_CLIENTS=2 scale —
// holding the lock across a tick's network sends is acceptable at
// this size.
//
// Grounded on networking/server/server.go's Client/clientsMux
// pattern (teacher), reworked around a fixed-slot registry with an
// explicit lowest-index tie-break instead of the teacher's
// address-keyed map.
package engine

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csyager/pong/internal/config"
	"github.com/csyager/pong/internal/physics"
	"github.com/csyager/pong/internal/wire"
)

// DatagramWriter is the subset of *net.UDPConn the engine needs to
// broadcast snapshots. Defined as an interface so Step is testable
// without a real socket.
type DatagramWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// Slot is one of the MAX_CLIENTS registry entries.
type Slot struct {
	PlayerID int
	Conn     net.Conn
	Addr     *net.UDPAddr
	Active   bool
}

// Engine is the process-lived singleton combining World and registry
// state under one lock.
type Engine struct {
	mu sync.Mutex

	slots           [config.MaxClients]Slot
	ball            wire.Position
	playerPositions [config.MaxClients]wire.Position
	leftScore       uint8
	rightScore      uint8
	phase           Phase
	scheduledStart  time.Time
	latestTick      time.Time
	snapshotSeq     uint32

	rng    *rand.Rand
	logger *zap.Logger
}

// New creates an Engine with the ball spawned at board center and the
// phase machine in Waiting.
func New(logger *zap.Logger) *Engine {
	e := &Engine{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:  PhaseWaiting,
	}
	e.ball = physics.Spawn(e.rng, config.Cols, config.Rows, config.BallMinStartingVelo, config.BallMaxStartingVelo)
	e.latestTick = time.Now()
	return e
}

// ActiveCount reports how many registry slots are currently active.
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for i := range e.slots {
		if e.slots[i].Active {
			count++
		}
	}
	return count
}

// Snapshot is a consistent, lock-protected read of the fields tests
// and callers commonly want to assert against. It is unrelated to
// the wire.GameStateSnapshot frame, which buildSnapshotLocked derives
// from the same fields.
type Snapshot struct {
	Ball            wire.Position
	PlayerPositions [config.MaxClients]wire.Position
	LeftScore       uint8
	RightScore      uint8
	Phase           Phase
	ScheduledStart  time.Time
	SnapshotSeq     uint32
}

// State returns a point-in-time copy of the world.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Ball:            e.ball,
		PlayerPositions: e.playerPositions,
		LeftScore:       e.leftScore,
		RightScore:      e.rightScore,
		Phase:           e.phase,
		ScheduledStart:  e.scheduledStart,
		SnapshotSeq:     e.snapshotSeq,
	}
}

// Shutdown closes every active stream connection and clears the
// registry. Safe to call once during process teardown.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.slots {
		if e.slots[i].Active && e.slots[i].Conn != nil {
			e.slots[i].Conn.Close()
		}
		e.slots[i] = Slot{}
	}
}
