package frame

import "time"

// Limiter paces a render loop to a target frame rate.
type Limiter struct {
	next time.Time
}

// Wait blocks until the next frame is due at fps frames per second. fps <= 0
// disables limiting. Sleeps most of the interval then spins the last stretch.
func (f *Limiter) Wait(fps int) {
	if fps <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(fps)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
