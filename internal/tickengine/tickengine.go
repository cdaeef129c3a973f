// Package tickengine drives the engine at the fixed tick rate. It is
// kept separate from internal/engine so the tick loop's lifecycle
// (its own stop channel, independent of the ingress context) can be
// shut down in the order the design requires: stop ticking before
// tearing down the sockets the tick loop writes to.
package tickengine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csyager/pong/internal/engine"
)

// Driver ticks Engine at Period using Conn to broadcast each
// resulting snapshot. Conn is the same engine.DatagramWriter
// interface Engine.Step takes, so tests can supply a fake in place of
// a real *net.UDPConn.
type Driver struct {
	Period time.Duration
	Engine *engine.Engine
	Conn   engine.DatagramWriter
	Logger *zap.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a Driver ready to Run. Constructing it this way (rather
// than a bare struct literal) avoids a race between Run lazily
// creating its stop/done channels and an early Stop call.
func New(period time.Duration, e *engine.Engine, conn engine.DatagramWriter, logger *zap.Logger) *Driver {
	return &Driver{
		Period: period,
		Engine: e,
		Conn:   conn,
		Logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run blocks, stepping the engine once per Period, until Stop is
// called. It is meant to be started in its own goroutine.
func (d *Driver) Run() {
	defer close(d.done)

	ticker := time.NewTicker(d.Period)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case now := <-ticker.C:
			d.Engine.Step(now, d.Conn)
		}
	}
}

// Stop halts the tick loop and waits for the in-flight Step, if any,
// to finish. Safe to call more than once, and from any goroutine, but
// assumes Run has been started — calling it without a running Run
// blocks until one is.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.done
}
