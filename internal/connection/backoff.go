package connection

import (
	"math/rand"
	"time"
)

// backoffDelay returns the wait before reconnect attempt n (1-based):
// base doubled per attempt, capped at max, with jitter in [d/2, 3d/2)
// so simultaneous clients do not stampede a recovering server. The
// jittered value is still capped at max.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultManagerConfig().ReconnectBaseDelay
	}
	if max < base {
		max = base
	}
	if attempt < 1 {
		attempt = 1
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			d = max
			break
		}
	}

	jittered := d/2 + time.Duration(rand.Int63n(int64(d)))
	if jittered > max {
		jittered = max
	}
	return jittered
}
