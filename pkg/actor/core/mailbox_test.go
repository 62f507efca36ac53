package core

import (
	"errors"
	"testing"
	"time"

	"github.com/jabolina/actorkit/pkg/actor/types"
)

func TestMailbox_FIFOOrder(t *testing.T) {
	mb := NewMailbox(nil)
	for i := 0; i < 5; i++ {
		mb.Put(types.Message{Type: types.TypeTag(i)})
	}
	for i := 0; i < 5; i++ {
		msg, err := mb.Take(0)
		if err != nil {
			t.Fatalf("unexpected error taking message %d: %v", i, err)
		}
		if msg.Type != types.TypeTag(i) {
			t.Fatalf("out of order: got %d, want %d", msg.Type, i)
		}
	}
}

func TestMailbox_TakeZeroIsNonBlocking(t *testing.T) {
	mb := NewMailbox(nil)
	if _, err := mb.Take(0); !errors.Is(err, types.ErrTimeout) {
		t.Fatalf("expected ErrTimeout on empty mailbox, got %v", err)
	}
}

func TestMailbox_TakeNegativeIsInvalue(t *testing.T) {
	mb := NewMailbox(nil)
	if _, err := mb.Take(-1); !errors.Is(err, types.ErrInvalue) {
		t.Fatalf("expected ErrInvalue, got %v", err)
	}
}

func TestMailbox_TakeBlocksThenDelivers(t *testing.T) {
	mb := NewMailbox(nil)
	start := time.Now()
	go func() {
		time.Sleep(30 * time.Millisecond)
		mb.Put(types.Message{Type: 7})
	}()
	msg, err := mb.Take(2 * time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type != 7 {
		t.Fatalf("got type %d, want 7", msg.Type)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("delivered suspiciously fast (%v), may not have blocked", elapsed)
	}
}

func TestMailbox_TakeTimesOutWithinSlack(t *testing.T) {
	mb := NewMailbox(nil)
	budget := 100 * time.Millisecond
	start := time.Now()
	_, err := mb.Take(budget)
	elapsed := time.Since(start)
	if !errors.Is(err, types.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed < budget || elapsed > budget+200*time.Millisecond {
		t.Fatalf("timeout fired at %v, expected close to %v", elapsed, budget)
	}
}

func TestMailbox_CloseInterruptsBlockedTake(t *testing.T) {
	mb := NewMailbox(nil)
	errc := make(chan error, 1)
	go func() {
		_, err := mb.Take(5 * time.Second)
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	mb.Close()
	select {
	case err := <-errc:
		if !errors.Is(err, types.ErrTimeout) {
			t.Fatalf("expected ErrTimeout after close, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("close did not wake the blocked Take")
	}
}

func TestMailbox_PutAfterCloseIsDropped(t *testing.T) {
	mb := NewMailbox(nil)
	mb.Close()
	if mb.Put(types.Message{}) {
		t.Fatal("expected Put to report false after Close")
	}
}

func TestMailbox_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 4, 1000
	mb := NewMailbox(nil)
	for p := 0; p < producers; p++ {
		go func(p int) {
			for i := 0; i < perProducer; i++ {
				mb.Put(types.Message{SourcePID: types.PID(p), Type: types.TypeTag(i)})
			}
		}(p)
	}

	counts := make([]int, producers)
	for i := 0; i < producers*perProducer; i++ {
		msg, err := mb.Take(2 * time.Second)
		if err != nil {
			t.Fatalf("unexpected error at message %d: %v", i, err)
		}
		if int(msg.Type) != counts[msg.SourcePID] {
			t.Fatalf("producer %d out of order: got %d, want %d", msg.SourcePID, msg.Type, counts[msg.SourcePID])
		}
		counts[msg.SourcePID]++
	}
	for p, c := range counts {
		if c != perProducer {
			t.Fatalf("producer %d delivered %d messages, want %d", p, c, perProducer)
		}
	}
}
