package audio

import "sync"

// gate blocks the PCM writer while playback is paused.
type gate struct {
	mu     sync.Mutex
	paused bool
	closed bool
	open   *sync.Cond
}

func newGate() *gate {
	g := &gate{}
	g.open = sync.NewCond(&g.mu)
	return g
}

// wait returns false once the gate is closed.
func (g *gate) wait() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.paused && !g.closed {
		g.open.Wait()
	}
	return !g.closed
}

func (g *gate) setPaused(p bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = p
	g.open.Broadcast()
}

func (g *gate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.open.Broadcast()
}
