package bridge

import "sync"

// lineQueue is the unbounded, order-preserving handoff between the reader
// goroutine and whoever polls the bridge. Push never blocks.
type lineQueue struct {
	mu    sync.Mutex
	lines []string
}

func (q *lineQueue) Push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()
}

// Drain removes and returns everything queued so far, oldest first.
// It returns nil when the queue is empty.
func (q *lineQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lines) == 0 {
		return nil
	}
	out := q.lines
	q.lines = nil
	return out
}

func (q *lineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
