package signal

import (
	"sync"

	"github.com/roach88/reactor/internal/runtime"
)

// Signal is the presence side shared by every signal kind.
type Signal interface {
	// WhenPresent schedules k on the current instant as soon as the signal
	// is present. If it is not present yet, k waits for the next emission.
	WhenPresent(rt runtime.Runtime, k runtime.Continuation)

	// Decide schedules ifPresent in this instant if the signal is or becomes
	// present before the instant ends. Otherwise ifAbsent runs at the start
	// of the next instant. Exactly one of the two is scheduled.
	Decide(rt runtime.Runtime, ifPresent, ifAbsent runtime.Continuation)
}

// branch is a present test parked until the instant decides.
type branch struct {
	then runtime.Continuation
	els  runtime.Continuation
}

// presence is the per-instant state common to all signal kinds. Valued
// signals keep their extra fields under the same mutex.
//
// State per instant: absent -> present on the first emission; both reset
// to absent by the end-of-instant hook.
type presence struct {
	mu      sync.Mutex
	emitted bool
	// hooked is set once the end-of-instant hook is registered for the
	// instant in progress.
	hooked  bool
	waiters []runtime.Continuation
	pending []branch

	// endOfInstant is the hook of the concrete signal.
	endOfInstant runtime.Continuation
}

// emitLocked marks the signal present. It returns the continuations to
// schedule on the current instant, and whether the caller must register
// the end-of-instant hook. Caller holds mu.
func (p *presence) emitLocked() (ready []runtime.Continuation, hook bool) {
	hook = p.hookLocked()
	if p.emitted {
		return nil, hook
	}
	p.emitted = true

	ready = p.waiters
	p.waiters = nil
	for _, b := range p.pending {
		ready = append(ready, b.then)
	}
	p.pending = nil
	return ready, hook
}

// hookLocked reports whether the end-of-instant hook still needs
// registering this instant, and records that it will be. Caller holds mu.
func (p *presence) hookLocked() bool {
	if p.hooked {
		return false
	}
	p.hooked = true
	return true
}

// resetLocked clears the instant's presence and returns the else branches
// of the present tests left undecided. Caller holds mu.
func (p *presence) resetLocked() []runtime.Continuation {
	var absent []runtime.Continuation
	if !p.emitted {
		for _, b := range p.pending {
			absent = append(absent, b.els)
		}
	}
	p.pending = nil
	p.emitted = false
	p.hooked = false
	return absent
}

// WhenPresent implements Signal.
func (p *presence) WhenPresent(rt runtime.Runtime, k runtime.Continuation) {
	p.mu.Lock()
	if !p.emitted {
		p.waiters = append(p.waiters, k)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	rt.OnCurrentInstant(k)
}

// Decide implements Signal.
func (p *presence) Decide(rt runtime.Runtime, ifPresent, ifAbsent runtime.Continuation) {
	p.mu.Lock()
	if p.emitted {
		p.mu.Unlock()
		rt.OnCurrentInstant(ifPresent)
		return
	}
	p.pending = append(p.pending, branch{then: ifPresent, els: ifAbsent})
	hook := p.hookLocked()
	p.mu.Unlock()

	if hook {
		rt.OnEndOfInstant(p.endOfInstant)
	}
}

// schedule pushes ready continuations onto the current instant and, when
// asked, registers the end-of-instant hook. Called without mu held.
func (p *presence) schedule(rt runtime.Runtime, ready []runtime.Continuation, hook bool) {
	if hook {
		rt.OnEndOfInstant(p.endOfInstant)
	}
	for _, k := range ready {
		rt.OnCurrentInstant(k)
	}
}

// scheduleNext pushes continuations onto the next instant.
func scheduleNext(rt runtime.Runtime, ks []runtime.Continuation) {
	for _, k := range ks {
		rt.OnNextInstant(k)
	}
}
