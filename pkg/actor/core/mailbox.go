package core

import (
	"sync"
	"time"

	"github.com/jabolina/actorkit/pkg/actor/types"
)

// Mailbox is an unbounded FIFO of messages with a blocking, timeout-capable
// take operation. Exactly one process owns a mailbox; many senders may put
// into it concurrently.
//
// The queue is a bounded-wait monitor: a mutex plus condition variable
// guard a slice-backed queue, Put appends and signals, Take loops on the
// condition variable against an absolute deadline computed once at entry.
// original_source/src/message.c's message_queue_get busy-polls with
// usleep(100) to wait for a message — spec.md §9 calls that out as a
// latent defect and requires a true wait primitive instead, which is what
// the condition variable below provides: an idle mailbox costs no CPU.
type Mailbox struct {
	mutex   sync.Mutex
	cond    *sync.Cond
	queue   []types.Message
	closed  bool
	onDepth func(int)
}

// NewMailbox creates an empty mailbox. onDepth, if non-nil, is called with
// the queue length after every Put/Take for metrics sampling; it runs
// under the mailbox lock and must not block or call back into the
// mailbox.
func NewMailbox(onDepth func(int)) *Mailbox {
	mb := &Mailbox{onDepth: onDepth}
	mb.cond = sync.NewCond(&mb.mutex)
	return mb
}

// Put enqueues a message. It never blocks and never fails unless the
// mailbox has been destroyed, in which case the message is dropped; the
// caller is expected to treat that the same as NO_PROCESS on send's
// resolution path.
func (m *Mailbox) Put(msg types.Message) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return false
	}
	m.queue = append(m.queue, msg)
	if m.onDepth != nil {
		m.onDepth(len(m.queue))
	}
	m.cond.Signal()
	return true
}

// Take waits up to timeout for a message. A timeout
// of exactly zero is a non-blocking peek-and-pop; negative timeouts are
// rejected with ErrInvalue. Spurious wakeups are handled by looping on the
// condition and re-checking the absolute deadline, not the remaining
// duration.
func (m *Mailbox) Take(timeout time.Duration) (types.Message, error) {
	if timeout < 0 {
		return types.Message{}, types.ErrInvalue
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if timeout == 0 {
		if len(m.queue) == 0 {
			return types.Message{}, types.ErrTimeout
		}
		return m.pop(), nil
	}

	deadline := time.Now().Add(timeout)
	for len(m.queue) == 0 && !m.closed {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return types.Message{}, types.ErrTimeout
		}
		m.waitUntil(remaining)
	}
	if len(m.queue) == 0 {
		return types.Message{}, types.ErrTimeout
	}
	return m.pop(), nil
}

// waitUntil blocks on the condition variable until signalled or d elapses.
// sync.Cond has no native deadline support, so a timer goroutine performs
// the wakeup; the caller's surrounding loop re-checks the absolute
// deadline on every wakeup, which is what guards against spurious
// wakeups rather than trusting this single wait.
func (m *Mailbox) waitUntil(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		m.mutex.Lock()
		m.cond.Broadcast()
		m.mutex.Unlock()
	})
	defer timer.Stop()
	m.cond.Wait()
}

func (m *Mailbox) pop() types.Message {
	msg := m.queue[0]
	m.queue = m.queue[1:]
	if m.onDepth != nil {
		m.onDepth(len(m.queue))
	}
	return msg
}

// Close marks the mailbox destroyed: further Puts are dropped and any
// blocked Take wakes with ErrTimeout, satisfying spec.md §9's requirement
// that node release interrupt outstanding receives rather than hang
// forever.
func (m *Mailbox) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.cond.Broadcast()
}

// Len reports the current queue depth, for metrics sampling only.
func (m *Mailbox) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.queue)
}
