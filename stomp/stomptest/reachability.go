package stomptest

import "sync"

// Reachability is a manually driven stomp.Reachability. Start reports the
// current state right away.
type Reachability struct {
	mu            sync.Mutex
	reachable     bool
	running       bool
	starts, stops int
	onReachable   func()
	onUnreachable func()
}

func NewReachability(reachable bool) *Reachability {
	return &Reachability{reachable: reachable}
}

func (r *Reachability) Start(onReachable, onUnreachable func()) error {
	r.mu.Lock()
	r.running = true
	r.starts++
	r.onReachable, r.onUnreachable = onReachable, onUnreachable
	r.mu.Unlock()
	r.notify()
	return nil
}

func (r *Reachability) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.stops++
	r.onReachable, r.onUnreachable = nil, nil
}

// SetReachable changes the state and notifies a running monitor.
func (r *Reachability) SetReachable(reachable bool) {
	r.mu.Lock()
	r.reachable = reachable
	r.mu.Unlock()
	r.notify()
}

func (r *Reachability) notify() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	fn := r.onUnreachable
	if r.reachable {
		fn = r.onReachable
	}
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *Reachability) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reachability) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

func (r *Reachability) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}
