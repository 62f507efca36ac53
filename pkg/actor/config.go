// Package actor is the public facade: spawn, send, receive, link, sleep,
// plus node creation and the distributer's connect/listen/disconnect
// entry points (spec.md §6). It is a thin layer over pkg/actor/core and
// pkg/actor/distributer, the way the teacher's top-level mcast package is
// a thin layer over pkg/mcast/core.
package actor

import (
	"time"

	"github.com/jabolina/actorkit/pkg/actor/core"
	"github.com/jabolina/actorkit/pkg/actor/definition"
	"github.com/jabolina/actorkit/pkg/actor/distributer"
	"github.com/jabolina/actorkit/pkg/actor/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-exported types so callers only need to import this one package for
// the common path.
type (
	Node    = core.Node
	Process = core.Process
	Message = types.Message
	Body    = core.Body
	NID     = types.NID
	PID     = types.PID
	TypeTag = types.TypeTag
)

// Re-exported error sentinels, comparable with errors.Is.
var (
	ErrInvalue   = types.ErrInvalue
	ErrNoSlots   = types.ErrNoSlots
	ErrNoProcess = types.ErrNoProcess
	ErrNoNode    = types.ErrNoNode
	ErrTimeout   = types.ErrTimeout
	ErrNetwork   = types.ErrNetwork
	ErrGeneric   = types.ErrGeneric
)

const (
	InvalidNID = types.InvalidNID
	InvalidPID = types.InvalidPID
)

// Config creates a Node, mirroring the teacher's BaseConfiguration but
// collapsed to what this spec actually needs. Distributer tuning is
// supplied separately per ConnectToNode/Listen call, since a node may
// speak to several remotes under different keys.
type Config struct {
	NID      types.NID
	Capacity int
	Logger   types.Logger
	Registry prometheus.Registerer
}

// NewNode validates cfg and allocates a Node (spec.md §4.2).
func NewNode(cfg Config) (*Node, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = definition.NewDefaultLogger()
	}
	return core.NewNode(core.NodeConfig{
		NID:               cfg.NID,
		Capacity:          cfg.Capacity,
		Logger:            logger,
		MetricsRegisterer: cfg.Registry,
	})
}

// ReleaseNode drains and releases node, closing any still-open remote
// sockets first (spec.md §4.2).
func ReleaseNode(node *Node) error {
	return node.Release()
}

// Spawn allocates a pid and runs body concurrently (spec.md §4.3).
func Spawn(node *Node, body Body) (PID, error) {
	return node.Spawn(body)
}

// Send resolves and enqueues a message from self (spec.md §4.4).
func Send(self *Process, destNID NID, destPID PID, tag TypeTag, bytes []byte) error {
	return self.Send(destNID, destPID, tag, bytes)
}

// Receive waits up to timeout for a message (spec.md §4.4).
func Receive(self *Process, timeout time.Duration) (Message, error) {
	return self.Receive(timeout)
}

// Link installs or clears self's supervisor (spec.md §4.5).
func Link(self *Process, supNID NID, supPID PID) {
	self.Link(supNID, supPID)
}

// Sleep yields the calling goroutine for at least the given duration
// (spec.md §4.3).
func Sleep(self *Process, d time.Duration) {
	self.Sleep(d)
}

// ConnectToNode is the active side of the distributer handshake (spec.md
// §4.6, §6).
func ConnectToNode(node *Node, hostPort string, key string) (NID, error) {
	cfg := distributer.DefaultConfig(key)
	return distributer.ConnectToNode(node, hostPort, cfg)
}

// ConnectToNodeWithConfig is ConnectToNode with full distributer tuning.
func ConnectToNodeWithConfig(node *Node, hostPort string, cfg distributer.Config) (NID, error) {
	return distributer.ConnectToNode(node, hostPort, cfg)
}

// Listen is the passive side of the distributer handshake: bind, accept
// one connection, authenticate (spec.md §4.6, §6).
func Listen(node *Node, port int, key string) (NID, error) {
	cfg := distributer.DefaultConfig(key)
	return distributer.Listen(node, port, cfg)
}

// ListenWithConfig is Listen with full distributer tuning.
func ListenWithConfig(node *Node, port int, cfg distributer.Config) (NID, error) {
	return distributer.Listen(node, port, cfg)
}

// DisconnectFromNode tears down the triad responsible for nid (spec.md
// §4.6).
func DisconnectFromNode(node *Node, nid NID) error {
	return distributer.DisconnectFromNode(node, nid)
}
