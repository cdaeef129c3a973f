package config

// Board constants. Clients are expected to share these; the register
// response also advertises them (see wire.RegisterResponsePayload) so
// a client that doesn't hardcode them still works.
const (
	Cols         float32 = 200
	Rows         float32 = 50
	BallRadius   float32 = 1.0
	PlayerLength float32 = 2.5

	MaxClients = 2

	BallMinStartingVelo float32 = 10.0
	BallMaxStartingVelo float32 = 15.0
	BallMaxVelo         float32 = 10.0

	// CountdownDurationSeconds is how long, in seconds, the server waits between all
	// slots filling and the match going Active, and again after
	// every point before the next rally starts.
	CountdownDurationSeconds = 5
)

// DefaultTickRateMS is the fixed tick period named by the spec
// (~62.5 Hz). Config.Load may override it for testing/tuning.
const DefaultTickRateMS = 16

// DefaultAddr is the default bind address shared by the TCP listener
// and the UDP socket.
const DefaultAddr = ":9034"
