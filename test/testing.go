// Package test holds cluster-setup helpers shared by the package tests and
// the fuzzy stress tests, grounded on the teacher's test/testing.go.
package test

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/jabolina/actorkit/pkg/actor"
)

// NewNode allocates a node for a test, failing the test on error.
func NewNode(t *testing.T, nid int32, capacity int) *actor.Node {
	t.Helper()
	node, err := actor.NewNode(actor.Config{
		NID:      actor.NID(nid),
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("failed creating node %d: %v", nid, err)
	}
	return node
}

// Pair wires two nodes together over loopback TCP: a listens, b connects,
// and both ends of the handshake are resolved before returning.
type Pair struct {
	A, B *actor.Node
	ANID actor.NID // b's id as seen by a
	BNID actor.NID // a's id as seen by b
}

// NewPair starts a and b listening/connecting to each other on port, using
// key as the shared secret for both ends.
func NewPair(t *testing.T, a, b *actor.Node, port int, key string) Pair {
	t.Helper()
	type result struct {
		nid actor.NID
		err error
	}
	listenDone := make(chan result, 1)
	go func() {
		nid, err := actor.Listen(a, port, key)
		listenDone <- result{nid, err}
	}()

	time.Sleep(100 * time.Millisecond)

	bNID, err := actor.ConnectToNode(b, fmt.Sprintf("127.0.0.1:%d", port), key)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	listenResult := <-listenDone
	if listenResult.err != nil {
		t.Fatalf("listen failed: %v", listenResult.err)
	}

	return Pair{A: a, B: b, ANID: listenResult.nid, BNID: bNID}
}

// PrintStackTrace dumps every goroutine's stack to the test log, used when
// a shutdown hangs past its deadline.
func PrintStackTrace(t *testing.T) {
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, true)
	t.Errorf("%s", buf[:n])
}

// WaitThisOrTimeout runs cb in a goroutine and reports whether it finished
// before duration elapses.
func WaitThisOrTimeout(cb func(), duration time.Duration) bool {
	done := make(chan bool)
	go func() {
		cb()
		done <- true
	}()
	select {
	case <-done:
		return true
	case <-time.After(duration):
		return false
	}
}
