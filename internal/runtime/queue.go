package runtime

// queue is a FIFO of continuations.
//
// The queue itself is not synchronized: Sequential owns its queues outright
// and Parallel guards all three with its own mutex.
type queue struct {
	items []Continuation
}

func newQueue() *queue {
	return &queue{
		items: make([]Continuation, 0, 64),
	}
}

// push adds k to the back of the queue.
func (q *queue) push(k Continuation) {
	q.items = append(q.items, k)
}

// pop removes and returns the front continuation.
// Returns (nil, false) if the queue is empty.
func (q *queue) pop() (Continuation, bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	k := q.items[0]

	// Nil out the slot so the closure (and everything it captures) can be
	// collected before the backing array is reallocated.
	q.items[0] = nil

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return k, true
}

func (q *queue) len() int {
	return len(q.items)
}

func (q *queue) empty() bool {
	return len(q.items) == 0
}
