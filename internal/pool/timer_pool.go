// Package pool recycles timers used to pace instrument commands. A long
// scan issues thousands of paced writes; reusing timers keeps the settle
// delay allocation-free.
package pool

import (
	"sync"
	"time"
)

var timers sync.Pool

// GetTimer returns a timer set to fire after d, reusing a pooled timer
// when one is available. Return it with PutTimer.
func GetTimer(d time.Duration) *time.Timer {
	v := timers.Get()
	if v == nil {
		return time.NewTimer(d)
	}

	t := v.(*time.Timer)
	if t.Reset(d) {
		// The timer was still active; drain a pending fire so the
		// caller only observes the new deadline.
		select {
		case <-t.C:
		default:
		}
	}

	return t
}

// PutTimer stops t and returns it to the pool. The caller must not touch
// t afterwards.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timers.Put(t)
}

// Sleep blocks for d using a pooled timer. Unlike time.Sleep it returns
// immediately for non-positive d.
func Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	t := GetTimer(d)
	defer PutTimer(t)
	<-t.C
}
