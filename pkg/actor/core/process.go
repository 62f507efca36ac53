package core

import (
	"time"

	"github.com/jabolina/actorkit/pkg/actor/types"
)

// state is a process table slot's lifecycle stage (spec.md §3).
type state int

const (
	stateFree state = iota
	stateAlive
	stateExiting
)

// Body is a process's entry point. It owns whatever it captures and is
// moved onto the Invoker; its return value becomes the error field of its
// exit notification (spec.md §4.3, §9 "body closures with captured
// state").
type Body func(self *Process) error

// Process is the runtime identity (nid, pid), its mailbox, and its single
// upstream supervision link. A Process is only ever reached through the
// Node that owns its slot; callers get one from Node.Spawn.
type Process struct {
	node    *Node
	nid     types.NID
	pid     types.PID
	mailbox *Mailbox
}

// Address returns this process's (nid, pid).
func (p *Process) Address() types.Address {
	return types.Address{NID: p.nid, PID: p.pid}
}

// Send resolves (destNID, destPID) and enqueues a copy of bytes there,
// following spec.md §4.4's routing rules: local delivery if destNID is
// this process's own node, otherwise routed through the local sender
// process responsible for that remote.
func (p *Process) Send(destNID types.NID, destPID types.PID, tag types.TypeTag, bytes []byte) error {
	return p.node.route(p.nid, p.pid, destNID, destPID, tag, bytes)
}

// Receive delegates to the mailbox's Take, per spec.md §4.4.
func (p *Process) Receive(timeout time.Duration) (types.Message, error) {
	return p.mailbox.Take(timeout)
}

// Link installs sup as this process's sole supervisor, replacing whatever
// was linked before. Linking to (InvalidNID, InvalidPID) clears it.
func (p *Process) Link(supNID types.NID, supPID types.PID) {
	p.node.setSupervisor(p.pid, supNID, supPID)
}

// Sleep yields for at least d; no ordering across processes is implied.
func (p *Process) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Mailbox exposes the process's mailbox. Nothing in this module calls it;
// the distributer's shutdown sentinel is delivered through Node.Send.
func (p *Process) Mailbox() *Mailbox {
	return p.mailbox
}

// Node returns the owning node, for distributer components that need
// access to node-level operations (spawning siblings, remote table
// bookkeeping).
func (p *Process) Node() *Node {
	return p.node
}
