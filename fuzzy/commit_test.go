// This package stress-tests the mailbox and supervision path the way the
// teacher's fuzzy/commit_test.go exercised its replicated commit protocol:
// no failure injection, just enough concurrent traffic to shake out
// ordering or leak bugs, wrapped in goleak.
package fuzzy

import (
	"fmt"
	"testing"
	"time"

	"github.com/jabolina/actorkit/pkg/actor"
	"github.com/jabolina/actorkit/test"
	"go.uber.org/goleak"
)

func Test_SequentialMessagesPreserveOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	node := test.NewNode(t, 1, 8)
	defer func() {
		if err := actor.ReleaseNode(node); err != nil {
			t.Errorf("release failed: %v", err)
		}
	}()

	const total = 1000
	done := make(chan struct{})
	collector, err := actor.Spawn(node, func(self *actor.Process) error {
		next := 0
		for next < total {
			msg, err := self.Receive(3 * time.Second)
			if err != nil {
				t.Errorf("receive %d failed: %v", next, err)
				return err
			}
			if string(msg.Bytes) != fmt.Sprintf("letter-%d", next) {
				t.Errorf("out of order at %d: got %q", next, msg.Bytes)
			}
			next++
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("spawn collector failed: %v", err)
	}

	for i := 0; i < total; i++ {
		if err := node.Send(node.NID(), actor.InvalidPID, node.NID(), collector, 0, []byte(fmt.Sprintf("letter-%d", i))); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	if !test.WaitThisOrTimeout(func() { <-done }, 10*time.Second) {
		test.PrintStackTrace(t)
		t.Fatal("collector never drained all messages")
	}
}

func Test_ConcurrentSendersDeliverEveryMessage(t *testing.T) {
	defer goleak.VerifyNone(t)

	node := test.NewNode(t, 1, 16)
	defer func() {
		if err := actor.ReleaseNode(node); err != nil {
			t.Errorf("release failed: %v", err)
		}
	}()

	const senders, perSender = 4, 1000
	seen := make(chan struct{}, senders*perSender)
	collector, err := actor.Spawn(node, func(self *actor.Process) error {
		for i := 0; i < senders*perSender; i++ {
			if _, err := self.Receive(5 * time.Second); err != nil {
				t.Errorf("receive %d failed: %v", i, err)
				return err
			}
			seen <- struct{}{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("spawn collector failed: %v", err)
	}

	for s := 0; s < senders; s++ {
		go func(s int) {
			for i := 0; i < perSender; i++ {
				_ = node.Send(node.NID(), actor.InvalidPID, node.NID(), collector, actor.TypeTag(s), []byte("x"))
			}
		}(s)
	}

	deadline := time.After(15 * time.Second)
	for i := 0; i < senders*perSender; i++ {
		select {
		case <-seen:
		case <-deadline:
			t.Fatalf("only received %d/%d messages before timeout", i, senders*perSender)
		}
	}
}
