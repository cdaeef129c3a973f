package engine

import (
	"time"

	"github.com/csyager/pong/internal/config"
	"github.com/csyager/pong/internal/physics"
	"github.com/csyager/pong/internal/wire"
)

// Phase is one state of the match lifecycle: Waiting for both slots
// to fill, Countdown running down to kickoff (or to the next rally
// after a point), and Active with the ball live. This replaces the
// original's two booleans plus a zero-sentinel countdown value with
// an explicit state machine.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseCountdown
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// Step advances the world by one tick as of now and returns the
// encoded GameStateSnapshot that was broadcast to every client with a
// known datagram address. now is supplied by the caller (the tick
// driver) rather than sampled internally, so phase transitions and
// physics integration are deterministic under test.
func (e *Engine) Step(now time.Time, udpConn DatagramWriter) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	dt := now.Sub(e.latestTick).Seconds()
	if dt < 0 {
		dt = 0
	}

	switch e.phase {
	case PhaseWaiting:
		if e.allActiveLocked() {
			e.phase = PhaseCountdown
			e.scheduledStart = now.Add(config.CountdownDurationSeconds * time.Second)
			e.broadcastStreamLocked(wire.TcpMessage{Opcode: wire.OpcodeGameStart}.Encode())
		}
	case PhaseCountdown:
		if !e.allActiveLocked() {
			e.phase = PhaseWaiting
		} else if !now.Before(e.scheduledStart) {
			e.phase = PhaseActive
		}
	case PhaseActive:
		if !e.allActiveLocked() {
			e.phase = PhaseWaiting
			break
		}
		e.stepActiveLocked(now, float32(dt))
	}

	snapshot := e.buildSnapshotLocked(now)
	e.broadcastDatagramLocked(udpConn, snapshot)
	e.latestTick = now
	return snapshot
}

func (e *Engine) stepActiveLocked(now time.Time, dt float32) {
	physics.Integrate(&e.ball, dt)
	scoreRight, scoreLeft := physics.ResolveWalls(&e.ball, config.Cols, config.Rows, config.BallRadius)

	if !scoreRight && !scoreLeft {
		for i := range e.slots {
			if !e.slots[i].Active {
				continue
			}
			if physics.ResolvePaddle(&e.ball, e.playerPositions[i], config.PlayerLength, config.BallRadius) {
				physics.ClampVelocity(&e.ball, config.BallMaxVelo)
			}
		}
	}

	switch {
	case scoreRight:
		e.rightScore = saturateIncrement(e.rightScore)
		e.resetForNextRallyLocked(now)
	case scoreLeft:
		e.leftScore = saturateIncrement(e.leftScore)
		e.resetForNextRallyLocked(now)
	}
}

func (e *Engine) resetForNextRallyLocked(now time.Time) {
	e.ball = physics.Spawn(e.rng, config.Cols, config.Rows, config.BallMinStartingVelo, config.BallMaxStartingVelo)
	e.phase = PhaseCountdown
	e.scheduledStart = now.Add(config.CountdownDurationSeconds * time.Second)
}

func saturateIncrement(v uint8) uint8 {
	if v == 255 {
		return v
	}
	return v + 1
}

// buildSnapshotLocked also advances snapshotSeq, an ordering-only
// hint for client-side duplicate/out-of-order detection. It is never
// placed on the wire and never gates any phase or physics decision.
func (e *Engine) buildSnapshotLocked(now time.Time) []byte {
	e.snapshotSeq++

	var secondsToStart int32
	if e.phase == PhaseCountdown {
		secondsToStart = int32(e.scheduledStart.Sub(now).Seconds())
		if secondsToStart < 0 {
			secondsToStart = 0
		}
	}

	snap := wire.GameStateSnapshot{
		LeftScore:      e.leftScore,
		RightScore:     e.rightScore,
		GameActive:     e.phase == PhaseActive,
		SecondsToStart: secondsToStart,
	}
	snap.Positions[0] = e.ball
	for i := 0; i < config.MaxClients; i++ {
		snap.Positions[i+1] = e.playerPositions[i]
	}
	return snap.Encode()
}
