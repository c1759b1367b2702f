package testutil

import "sync"

// Call is one recorded operation on a fake.
type Call struct {
	// Seq is the call's position across every fake sharing the log,
	// starting at 1.
	Seq int64

	// Op names the operation, e.g. "post s1".
	Op string
}

// CallLog records calls in order across several fakes so tests can assert
// that one operation happened before another.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CallLog struct {
	mu    sync.Mutex
	seq   int64
	calls []Call
}

// NewCallLog creates an empty log. The first recorded call gets Seq 1.
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Record appends op and returns its sequence number.
func (l *CallLog) Record(op string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.calls = append(l.calls, Call{Seq: l.seq, Op: op})
	return l.seq
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Call(nil), l.calls...)
}

// Ops returns just the operation names, in order.
func (l *CallLog) Ops() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ops := make([]string, len(l.calls))
	for i, c := range l.calls {
		ops[i] = c.Op
	}
	return ops
}

// Seq returns the sequence number of the first call named op, or 0.
func (l *CallLog) Seq(op string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.calls {
		if c.Op == op {
			return c.Seq
		}
	}
	return 0
}

// Reset clears the log. The next call gets Seq 1 again.
func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq = 0
	l.calls = nil
}
