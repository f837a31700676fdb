package store

import (
	"sync"
	"time"
)

// IDGen hands out strictly increasing ids derived from the wall clock in
// microseconds. Ids stay below 2^53 until well past the year 2200, so they
// survive a round trip through a JSON number.
type IDGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGen() *IDGen {
	return &IDGen{now: time.Now}
}

// NewIDGenWithClock is for tests.
func NewIDGenWithClock(now func() time.Time) *IDGen {
	return &IDGen{now: now}
}

// Next returns an id greater than every id returned or observed before.
func (g *IDGen) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := max(g.now().UnixMicro(), g.last+1)
	g.last = id
	return id
}

// Observe makes sure later ids are greater than id.
func (g *IDGen) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = max(g.last, id)
}
