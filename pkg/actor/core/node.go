package core

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/jabolina/actorkit/pkg/actor/metrics"
	"github.com/jabolina/actorkit/pkg/actor/types"
	"github.com/prometheus/client_golang/prometheus"
)

// slot is one entry of a Node's process table (spec.md §3 "Process
// entry").
type slot struct {
	state      state
	process    *Process
	supervisor types.Address
	hasSup     bool
}

// NodeConfig configures a Node at creation.
type NodeConfig struct {
	// NID is this node's own id within the cluster.
	NID types.NID
	// Capacity bounds the process table. Must be > 0.
	Capacity int
	// Logger is used for every component this node owns. NewNode stores
	// it as given, nil included; the facade's actor.NewNode substitutes
	// definition.NewDefaultLogger() for a nil Logger (core does not import
	// definition, avoiding an import cycle).
	Logger types.Logger
	// MetricsRegisterer receives this node's Prometheus collectors. A nil
	// value gets a private registry so tests never collide.
	MetricsRegisterer prometheus.Registerer
}

// Node is the process-wide container owning the pid space, the
// remote-node table, and the Invoker used to run process bodies and
// distributer loops.
type Node struct {
	nid     types.NID
	logger  types.Logger
	metrics *metrics.Metrics
	invoker Invoker

	mutex   sync.Mutex
	slots   []slot
	free    []int // stack of known-free indices, best-effort hint
	remotes [types.MaxRemoteNodes]types.PID
	closers map[types.NID]func() error

	releaseOnce sync.Once
	released    chan struct{}
}

// NewNode validates cfg and allocates a fresh process table, all slots
// free, and an empty remote-node table (spec.md §4.2).
func NewNode(cfg NodeConfig) (*Node, error) {
	if cfg.Capacity <= 0 {
		return nil, types.ErrInvalue
	}
	if cfg.NID < 0 {
		return nil, types.ErrInvalue
	}
	n := &Node{
		nid:      cfg.NID,
		logger:   cfg.Logger,
		metrics:  metrics.New(cfg.MetricsRegisterer, int32(cfg.NID)),
		invoker:  NewGoInvoker(),
		slots:    make([]slot, cfg.Capacity),
		closers:  make(map[types.NID]func() error),
		released: make(chan struct{}),
	}
	for i := range n.remotes {
		n.remotes[i] = types.InvalidPID
	}
	for i := range n.slots {
		n.free = append(n.free, i)
	}
	return n, nil
}

// NID returns the node's own id.
func (n *Node) NID() types.NID { return n.nid }

// Logger returns the node's logger.
func (n *Node) Logger() types.Logger { return n.logger }

// Metrics returns the node's metrics bundle.
func (n *Node) Metrics() *metrics.Metrics { return n.metrics }

// Invoker returns the node's executor handle, used by the distributer
// package to spawn triad goroutines under the same drain accounting as
// process bodies.
func (n *Node) Invoker() Invoker { return n.invoker }

// Spawn allocates a pid, installs a Process, and submits body to run
// concurrently (spec.md §4.3). It returns immediately with the allocated
// pid; the body runs on its own goroutine via the node's Invoker.
func (n *Node) Spawn(body Body) (types.PID, error) {
	pid, proc, err := n.allocate()
	if err != nil {
		return types.InvalidPID, err
	}
	n.metrics.SpawnsTotal.Inc()

	n.invoker.Spawn(func() {
		result := n.runBody(proc, body)
		n.onExit(proc, result)
	})

	return pid, nil
}

func (n *Node) runBody(proc *Process, body Body) (err error) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorf("process %s body panicked: %v", proc.Address(), r)
			err = types.NewError(types.GenericKind, nil)
		}
	}()
	return body(proc)
}

// allocate scans for the lowest free slot, flips it to alive, and installs
// a fresh mailbox, per spec.md §4.2's "dense allocation" rule.
func (n *Node) allocate() (types.PID, *Process, error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	for len(n.free) > 0 {
		// Take the lowest index on the hint stack so allocation stays dense.
		low := 0
		for i, idx := range n.free {
			if idx < n.free[low] {
				low = i
			}
		}
		idx := n.free[low]
		n.free[low] = n.free[len(n.free)-1]
		n.free = n.free[:len(n.free)-1]
		if n.slots[idx].state == stateFree {
			return n.installLocked(idx)
		}
		// Stale hint (slot already reused); keep scanning the hint stack.
	}

	for idx := range n.slots {
		if n.slots[idx].state == stateFree {
			return n.installLocked(idx)
		}
	}

	return types.InvalidPID, nil, types.ErrNoSlots
}

func (n *Node) installLocked(idx int) (types.PID, *Process, error) {
	pid := types.PID(idx)
	mb := NewMailbox(func(depth int) {
		n.metrics.MailboxDepth.WithLabelValues(pid.String()).Set(float64(depth))
	})
	proc := &Process{node: n, nid: n.nid, pid: pid, mailbox: mb}
	n.slots[idx] = slot{state: stateAlive, process: proc}
	n.metrics.ProcessesAlive.Set(float64(n.countAliveLocked()))
	return pid, proc, nil
}

func (n *Node) countAliveLocked() int {
	count := 0
	for _, s := range n.slots {
		if s.state != stateFree {
			count++
		}
	}
	return count
}

// setSupervisor implements Process.Link under the node's mutex (the
// process table is shared state per spec.md §5).
func (n *Node) setSupervisor(pid types.PID, supNID types.NID, supPID types.PID) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	idx := int(pid)
	if idx < 0 || idx >= len(n.slots) {
		return
	}
	if supNID == types.InvalidNID && supPID == types.InvalidPID {
		n.slots[idx].hasSup = false
		n.slots[idx].supervisor = types.Address{}
		return
	}
	n.slots[idx].hasSup = true
	n.slots[idx].supervisor = types.Address{NID: supNID, PID: supPID}
}

// onExit drives the supervision step (spec.md §4.5): if a supervisor is
// installed, build and route an exit message, then free the slot.
func (n *Node) onExit(proc *Process, result error) {
	kind := types.KindOf(result)
	n.metrics.ExitsTotal.WithLabelValues(kind.String()).Inc()

	n.mutex.Lock()
	idx := int(proc.pid)
	sup, hasSup := n.slots[idx].supervisor, n.slots[idx].hasSup
	n.slots[idx] = slot{state: stateExiting}
	n.mutex.Unlock()

	proc.mailbox.Close()

	if hasSup {
		payload := types.EncodeExit(types.ExitPayload{NID: proc.nid, PID: proc.pid, Kind: kind})
		if err := n.route(proc.nid, proc.pid, sup.NID, sup.PID, types.ExitMessageTag, payload); err != nil {
			n.logger.Warnf("failed delivering exit message for %s to supervisor %s: %v", proc.Address(), sup, err)
		}
	}

	n.mutex.Lock()
	n.slots[idx] = slot{state: stateFree}
	n.free = append(n.free, idx)
	n.metrics.ProcessesAlive.Set(float64(n.countAliveLocked()))
	n.mutex.Unlock()
}

// route implements spec.md §4.4's send resolution: local enqueue if
// destNID is this node, else forward to the local sender process
// responsible for destNID.
func (n *Node) route(srcNID types.NID, srcPID types.PID, destNID types.NID, destPID types.PID, tag types.TypeTag, bytes []byte) error {
	msg := types.Message{
		SourceNID: srcNID,
		SourcePID: srcPID,
		DestNID:   destNID,
		DestPID:   destPID,
		Type:      tag,
		Bytes:     append([]byte(nil), bytes...),
	}

	if destNID == n.nid {
		proc, err := n.localProcess(destPID)
		if err != nil {
			n.metrics.MessagesDroppedTotal.WithLabelValues("no_process").Inc()
			return err
		}
		if !proc.mailbox.Put(msg) {
			n.metrics.MessagesDroppedTotal.WithLabelValues("no_process").Inc()
			return types.ErrNoProcess
		}
		n.metrics.MessagesSentTotal.WithLabelValues("local").Inc()
		return nil
	}

	senderPID, err := n.remoteSender(destNID)
	if err != nil {
		n.metrics.MessagesDroppedTotal.WithLabelValues("no_node").Inc()
		return err
	}
	proc, err := n.localProcess(senderPID)
	if err != nil {
		n.metrics.MessagesDroppedTotal.WithLabelValues("no_node").Inc()
		return types.ErrNoNode
	}
	if !proc.mailbox.Put(msg) {
		n.metrics.MessagesDroppedTotal.WithLabelValues("no_node").Inc()
		return types.ErrNoNode
	}
	n.metrics.MessagesSentTotal.WithLabelValues("remote").Inc()
	return nil
}

func (n *Node) localProcess(pid types.PID) (*Process, error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	idx := int(pid)
	if idx < 0 || idx >= len(n.slots) || n.slots[idx].state != stateAlive {
		return nil, types.ErrNoProcess
	}
	return n.slots[idx].process, nil
}

func (n *Node) remoteSender(nid types.NID) (types.PID, error) {
	if nid < 0 || int(nid) >= types.MaxRemoteNodes {
		return types.InvalidPID, types.ErrNoNode
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	pid := n.remotes[nid]
	if pid == types.InvalidPID {
		return types.InvalidPID, types.ErrNoNode
	}
	return pid, nil
}

// SetRemote installs pid as the local sender process for remote nid. Used
// by the distributer package after a successful handshake. Returns false
// if the slot was already occupied, enforcing "exactly one sender pid per
// connected remote" (spec.md §3).
func (n *Node) SetRemote(nid types.NID, pid types.PID) bool {
	if nid < 0 || int(nid) >= types.MaxRemoteNodes {
		return false
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.remotes[nid] != types.InvalidPID {
		return false
	}
	n.remotes[nid] = pid
	return true
}

// ReplaceRemote overwrites the sender pid for an already-connected remote,
// used by the connection supervisor's sender-restart path (spec.md §4.6).
func (n *Node) ReplaceRemote(nid types.NID, pid types.PID) {
	if nid < 0 || int(nid) >= types.MaxRemoteNodes {
		return
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.remotes[nid] = pid
}

// ClearRemote resets the remote-node table entry to invalid, so future
// sends to nid fail with NO_NODE until a new handshake (spec.md §7).
func (n *Node) ClearRemote(nid types.NID) {
	if nid < 0 || int(nid) >= types.MaxRemoteNodes {
		return
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.remotes[nid] = types.InvalidPID
}

// RegisterRemoteCloser associates a teardown function (typically
// net.Conn.Close) with a connected remote, so Release can close every
// open socket without the distributer package reaching back into Node's
// internals. Used by the distributer package once a triad is established.
func (n *Node) RegisterRemoteCloser(nid types.NID, closer func() error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.closers[nid] = closer
}

// UnregisterRemoteCloser removes nid's teardown function, called once a
// connection supervisor has already torn the triad down on its own
// (spec.md §4.6) so Release does not double-close the socket.
func (n *Node) UnregisterRemoteCloser(nid types.NID) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	delete(n.closers, nid)
}

// RemoteSenderPID exposes the current sender pid for nid, or
// (InvalidPID, false) if not connected. Used by the disconnect path.
func (n *Node) RemoteSenderPID(nid types.NID) (types.PID, bool) {
	pid, err := n.remoteSender(nid)
	if err != nil {
		return types.InvalidPID, false
	}
	return pid, true
}

// Send is the public entry point used by callers that do not already hold
// a *Process (e.g. the distributer's disconnect path, or test code). Most
// callers should prefer Process.Send.
func (n *Node) Send(srcNID types.NID, srcPID types.PID, destNID types.NID, destPID types.PID, tag types.TypeTag, bytes []byte) error {
	return n.route(srcNID, srcPID, destNID, destPID, tag, bytes)
}

// Release drains all alive processes and tears down the node. It is
// idempotent. Every still-open remote socket registered via
// RegisterRemoteCloser is closed first, which drives the corresponding
// receiver to a NETWORK exit instead of leaking the connection (the
// sender, blocked on its mailbox, exits with TIMEOUT once that mailbox is
// closed below). Outstanding receives are then interrupted with ErrTimeout
// by closing every live mailbox (spec.md §9's open question on release
// vs. blocked receives), and Release waits for every process body to
// return before the table is freed.
func (n *Node) Release() error {
	var result error
	n.releaseOnce.Do(func() {
		close(n.released)

		n.mutex.Lock()
		closers := make([]func() error, 0, len(n.closers))
		for _, c := range n.closers {
			closers = append(closers, c)
		}
		n.mutex.Unlock()
		for _, c := range closers {
			if err := c(); err != nil {
				result = multierror.Append(result, err)
			}
		}

		n.mutex.Lock()
		for i := range n.slots {
			if n.slots[i].state != stateFree && n.slots[i].process != nil {
				n.slots[i].process.mailbox.Close()
			}
		}
		n.mutex.Unlock()

		n.invoker.Stop()
	})
	return result
}

// Released returns a channel closed once Release has been called, for
// components that want to stop polling without a dedicated shutdown
// signal per spec.md §9.
func (n *Node) Released() <-chan struct{} {
	return n.released
}
