// Package physics implements the ball/paddle kinematics and
// collision resolution described by the component design: forward-
// Euler integration, wall bounce/score detection, and axis-aligned
// paddle deflection. It works on plain wire.Position values and
// board-constant parameters rather than owning any server state, so
// it is exercised directly by tests without a running match.
package physics

import (
	"math/rand"

	"github.com/csyager/pong/internal/wire"
)

// Integrate advances ball by its velocity over dt seconds
// (forward-Euler, matching the original tick's double-precision
// delta applied to single-precision state).
func Integrate(ball *wire.Position, dt float32) {
	ball.X += ball.Dx * dt
	ball.Y += ball.Dy * dt
}

// ResolveWalls clamps ball against the top/bottom walls (bounce) and
// reports whether a side was conceded. On a score the caller is
// responsible for resetting the ball; ResolveWalls does not mutate X
// position when a goal is scored, since the reset will overwrite it.
func ResolveWalls(ball *wire.Position, cols, rows, ballRadius float32) (scoreRight, scoreLeft bool) {
	if ball.X-ballRadius <= 0 {
		return true, false
	}
	if ball.X+ballRadius > cols {
		return false, true
	}

	if ball.Y-ballRadius <= 0 {
		ball.Y = ballRadius
		ball.Dy = -ball.Dy
	} else if ball.Y+ballRadius > rows {
		ball.Y = rows - ballRadius
		ball.Dy = -ball.Dy
	}
	return false, false
}

// ResolvePaddle checks ball's bounding box against the paddle square
// rooted at paddle.X,paddle.Y with side playerLength, and on overlap
// ejects the ball to the side closest to its center and ensures the
// X velocity points away from the paddle. dx is flipped only if it
// is currently pointing into the paddle, so adjacent frames can't
// double-flip it. Reports whether a collision was resolved.
func ResolvePaddle(ball *wire.Position, paddle wire.Position, playerLength, ballRadius float32) bool {
	px, py := paddle.X, paddle.Y

	ballMinX, ballMaxX := ball.X-ballRadius, ball.X+ballRadius
	ballMinY, ballMaxY := ball.Y-ballRadius, ball.Y+ballRadius
	paddleMinX, paddleMaxX := px, px+playerLength
	paddleMinY, paddleMaxY := py, py+playerLength

	overlap := ballMaxX > paddleMinX && ballMinX < paddleMaxX &&
		ballMaxY > paddleMinY && ballMinY < paddleMaxY
	if !overlap {
		return false
	}

	if ball.X < px+playerLength/2 {
		ball.X = px - ballRadius
		if ball.Dx > 0 {
			ball.Dx = -ball.Dx
		}
	} else {
		ball.X = px + playerLength + ballRadius
		if ball.Dx < 0 {
			ball.Dx = -ball.Dx
		}
	}
	return true
}

// ClampVelocity caps the magnitude of each velocity component at max,
// preserving sign. Used after a paddle collision so rallies can't
// accelerate without bound.
func ClampVelocity(ball *wire.Position, max float32) {
	ball.Dx = clampMagnitude(ball.Dx, max)
	ball.Dy = clampMagnitude(ball.Dy, max)
}

func clampMagnitude(v, max float32) float32 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}

// Spawn returns a ball at the board center with a velocity whose
// components are drawn independently and uniformly from
// [minVelo, maxVelo] in magnitude, with signs chosen uniformly.
func Spawn(rng *rand.Rand, cols, rows, minVelo, maxVelo float32) wire.Position {
	return wire.Position{
		X:  cols / 2,
		Y:  rows / 2,
		Dx: signedMagnitude(rng, minVelo, maxVelo),
		Dy: signedMagnitude(rng, minVelo, maxVelo),
	}
}

func signedMagnitude(rng *rand.Rand, min, max float32) float32 {
	magnitude := min + rng.Float32()*(max-min)
	if rng.Intn(2) == 0 {
		return -magnitude
	}
	return magnitude
}
