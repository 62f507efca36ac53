package core

import (
	"errors"
	"testing"
	"time"

	"github.com/jabolina/actorkit/pkg/actor/types"
)

func newTestNode(t *testing.T, capacity int) *Node {
	t.Helper()
	n, err := NewNode(NodeConfig{NID: 1, Capacity: capacity})
	if err != nil {
		t.Fatalf("failed creating node: %v", err)
	}
	return n
}

func TestNode_SpawnBeyondCapacityReturnsNoSlots(t *testing.T) {
	n := newTestNode(t, 2)
	block := make(chan struct{})
	for i := 0; i < 2; i++ {
		if _, err := n.Spawn(func(self *Process) error {
			<-block
			return nil
		}); err != nil {
			t.Fatalf("unexpected spawn error: %v", err)
		}
	}
	if _, err := n.Spawn(func(self *Process) error { return nil }); !errors.Is(err, types.ErrNoSlots) {
		t.Fatalf("expected ErrNoSlots, got %v", err)
	}
	close(block)
	n.Release()
}

func TestNode_SendToUnknownPidIsNoProcess(t *testing.T) {
	n := newTestNode(t, 4)
	err := n.Send(n.NID(), 0, n.NID(), 99, 0, nil)
	if !errors.Is(err, types.ErrNoProcess) {
		t.Fatalf("expected ErrNoProcess, got %v", err)
	}
}

func TestNode_SendToUnknownNidIsNoNode(t *testing.T) {
	n := newTestNode(t, 4)
	err := n.Send(n.NID(), 0, 77, 0, 0, nil)
	if !errors.Is(err, types.ErrNoNode) {
		t.Fatalf("expected ErrNoNode, got %v", err)
	}
}

func TestNode_LocalRoundTrip(t *testing.T) {
	n := newTestNode(t, 4)
	received := make(chan types.Message, 1)

	pid, err := n.Spawn(func(self *Process) error {
		msg, err := self.Receive(2 * time.Second)
		if err != nil {
			return err
		}
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	if err := n.Send(n.NID(), types.InvalidPID, n.NID(), pid, 42, []byte("hi")); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Type != 42 || string(msg.Bytes) != "hi" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
	n.Release()
}

func TestNode_SupervisionDeliversExitMessage(t *testing.T) {
	n := newTestNode(t, 4)
	exitc := make(chan types.ExitPayload, 1)

	supPID, err := n.Spawn(func(self *Process) error {
		msg, err := self.Receive(2 * time.Second)
		if err != nil {
			return err
		}
		payload, ok := types.DecodeExit(msg.Bytes)
		if !ok || !msg.IsExit() {
			t.Errorf("expected a well-formed exit message, got %+v", msg)
		}
		exitc <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("spawn supervisor failed: %v", err)
	}

	childErr := types.NewError(types.GenericKind, nil)
	_, err = n.Spawn(func(self *Process) error {
		self.Link(n.NID(), supPID)
		return childErr
	})
	if err != nil {
		t.Fatalf("spawn child failed: %v", err)
	}

	select {
	case payload := <-exitc:
		if payload.Kind != types.GenericKind {
			t.Fatalf("expected GenericKind exit, got %s", payload.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("exit message never delivered")
	}
	n.Release()
}

func TestNode_ReleaseInterruptsBlockedReceive(t *testing.T) {
	n := newTestNode(t, 4)
	done := make(chan error, 1)
	if _, err := n.Spawn(func(self *Process) error {
		_, err := self.Receive(30 * time.Second)
		done <- err
		return err
	}); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if err := n.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, types.ErrTimeout) {
			t.Fatalf("expected the blocked receive to surface ErrTimeout, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("release did not unblock the receiving process")
	}
}

func TestNode_ReleaseIsIdempotent(t *testing.T) {
	n := newTestNode(t, 2)
	if err := n.Release(); err != nil {
		t.Fatalf("first release failed: %v", err)
	}
	if err := n.Release(); err != nil {
		t.Fatalf("second release failed: %v", err)
	}
}

func TestNode_DenseAllocationReusesFreedSlot(t *testing.T) {
	n := newTestNode(t, 3)
	done := make(chan struct{})

	pidA, err := n.Spawn(func(self *Process) error { return nil })
	if err != nil {
		t.Fatalf("spawn a failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond) // let pidA's body return and free its slot

	pidB, err := n.Spawn(func(self *Process) error { <-done; return nil })
	if err != nil {
		t.Fatalf("spawn b failed: %v", err)
	}
	if pidB != pidA {
		t.Fatalf("expected pidB to reuse freed slot %d, got %d", pidA, pidB)
	}
	close(done)
	time.Sleep(50 * time.Millisecond)
	n.Release()
}
