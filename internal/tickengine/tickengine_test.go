package tickengine

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/csyager/pong/internal/engine"
)

type fakeUDP struct {
	sent int
}

func (f *fakeUDP) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	f.sent++
	return len(b), nil
}

func TestDriverStepsUntilStopped(t *testing.T) {
	d := New(5*time.Millisecond, engine.New(nil), &fakeUDP{}, nil)

	go d.Run()
	time.Sleep(30 * time.Millisecond)
	d.Stop()

	steps := d.Engine.State().SnapshotSeq
	assert.NotZero(t, steps, "the engine should have been stepped before Stop")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, steps, d.Engine.State().SnapshotSeq, "no steps after Stop")

	assert.Equal(t, engine.PhaseWaiting, d.Engine.State().Phase, "no clients registered, phase stays Waiting")
}

func TestStopIsIdempotent(t *testing.T) {
	d := New(5*time.Millisecond, engine.New(nil), &fakeUDP{}, nil)

	go d.Run()
	time.Sleep(10 * time.Millisecond)

	assert.NotPanics(t, func() {
		d.Stop()
		d.Stop()
	})
}
