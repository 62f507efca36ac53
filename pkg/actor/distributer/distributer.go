package distributer

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-version"
	"github.com/jabolina/actorkit/pkg/actor/core"
	"github.com/jabolina/actorkit/pkg/actor/types"
)

// sentinelTag tags the self-addressed shutdown sentinel a connection
// supervisor sends to a sender it wants to stop. The payload mirrors
// original_source/src/distributer.c's literal "STOP" sentinel, which this
// spec generalizes to "any self-addressed message" (spec.md §4.6) while
// keeping the original's bytes as the default for wire-level parity with
// another instance of this runtime.
const sentinelTag types.TypeTag = 0

var sentinelPayload = []byte("STOP\x00")

// Config tunes one distributer connection.
type Config struct {
	// Key is the pre-shared key compared on handshake. Must not exceed
	// types.KeyLength bytes.
	Key string
	// DialTimeout bounds the TCP connect and handshake exchange.
	// Defaults to 10s, spec.md §4.6's "10-second receive timeout."
	DialTimeout time.Duration
	// IdleTimeout bounds both the sender's idle-mailbox wait and the
	// receiver's idle-socket read once the handshake completes, per
	// spec.md §5's "sockets carry a 10-second receive timeout." Defaults
	// to 10s.
	IdleTimeout time.Duration
	// Version is this node's own protocol version. DefaultConfig sets
	// "1.0.0"; an empty or unparsable Version fails checkVersion with
	// INVALUE.
	Version string
	// MinSupportedVersion rejects starting a triad against a locally
	// misconfigured older build before any bytes hit the wire -- a local
	// compatibility gate, not part of the bit-exact handshake spec.md §6
	// pins down. Defaults to Version.
	MinSupportedVersion string
}

// DefaultConfig returns the spec's recommended defaults.
func DefaultConfig(key string) Config {
	return Config{
		Key:                 key,
		DialTimeout:         10 * time.Second,
		IdleTimeout:         10 * time.Second,
		Version:             "1.0.0",
		MinSupportedVersion: "1.0.0",
	}
}

func (c Config) checkVersion() error {
	v, err := version.NewVersion(c.Version)
	if err != nil {
		return types.NewError(types.InvalueKind, err)
	}
	min := c.MinSupportedVersion
	if min == "" {
		min = c.Version
	}
	minV, err := version.NewVersion(min)
	if err != nil {
		return types.NewError(types.InvalueKind, err)
	}
	if v.LessThan(minV) {
		return types.NewError(types.InvalueKind, fmt.Errorf("%w: %s below minimum %s", types.ErrUnsupportedProtocol, v, minV))
	}
	return nil
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return c.DialTimeout
}

func (c Config) idleTimeout() time.Duration {
	if c.IdleTimeout <= 0 {
		return 10 * time.Second
	}
	return c.IdleTimeout
}

// ConnectToNode is the active side of the handshake (spec.md §4.6). It
// dials (host, port), authenticates with the shared key, exchanges node
// ids, and on success installs the sender/receiver/connection-supervisor
// triad on node.
func ConnectToNode(node *core.Node, hostPort string, cfg Config) (types.NID, error) {
	if node == nil {
		return types.InvalidNID, types.ErrInvalue
	}
	if err := cfg.checkVersion(); err != nil {
		return types.InvalidNID, err
	}
	keyBuf, err := encodeKey(cfg.Key)
	if err != nil {
		return types.InvalidNID, err
	}

	conn, err := net.DialTimeout("tcp", hostPort, cfg.dialTimeout())
	if err != nil {
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}
	_ = conn.SetDeadline(time.Now().Add(cfg.dialTimeout()))

	if _, err := conn.Write(keyBuf); err != nil {
		conn.Close()
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}
	if _, err := conn.Write(encodeNID(node.NID())); err != nil {
		conn.Close()
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}

	peerNID, err := readAndValidatePeerNID(conn, node)
	if err != nil {
		conn.Close()
		return types.InvalidNID, err
	}

	_ = conn.SetDeadline(time.Time{})
	if err := startTriad(node, peerNID, conn, cfg); err != nil {
		conn.Close()
		return types.InvalidNID, err
	}
	return peerNID, nil
}

// Listen is the passive side: bind, accept exactly one connection, and
// perform the mirror-image handshake. Callers that want a server loop
// call Listen repeatedly (spec.md §4.6).
func Listen(node *core.Node, port int, cfg Config) (types.NID, error) {
	if node == nil {
		return types.InvalidNID, types.ErrInvalue
	}
	if err := cfg.checkVersion(); err != nil {
		return types.InvalidNID, err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}
	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}
	_ = conn.SetDeadline(time.Now().Add(cfg.dialTimeout()))

	keyBuf := make([]byte, types.KeyLength+1)
	if _, err := io.ReadFull(conn, keyBuf); err != nil {
		conn.Close()
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}
	expected, err := encodeKey(cfg.Key)
	if err != nil {
		conn.Close()
		return types.InvalidNID, err
	}
	if subtle.ConstantTimeCompare(keyBuf, expected) != 1 {
		conn.Close()
		return types.InvalidNID, types.NewError(types.NetworkKind, fmt.Errorf("key mismatch"))
	}

	if _, err := conn.Write(encodeNID(node.NID())); err != nil {
		conn.Close()
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}

	peerNID, err := readAndValidatePeerNID(conn, node)
	if err != nil {
		conn.Close()
		return types.InvalidNID, err
	}

	_ = conn.SetDeadline(time.Time{})
	if err := startTriad(node, peerNID, conn, cfg); err != nil {
		conn.Close()
		return types.InvalidNID, err
	}
	return peerNID, nil
}

// DisconnectFromNode sends the shutdown sentinel to nid's sender process,
// which triggers the sender's clean exit and, in turn, the connection
// supervisor's teardown (spec.md §4.6).
func DisconnectFromNode(node *core.Node, nid types.NID) error {
	if node == nil || nid < 0 || int(nid) >= types.MaxRemoteNodes {
		return types.ErrInvalue
	}
	senderPID, ok := node.RemoteSenderPID(nid)
	if !ok {
		return types.ErrNoNode
	}
	return node.Send(node.NID(), senderPID, node.NID(), senderPID, sentinelTag, sentinelPayload)
}

func readAndValidatePeerNID(conn net.Conn, node *core.Node) (types.NID, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return types.InvalidNID, types.NewError(types.NetworkKind, err)
	}
	peerNID := decodeNID(buf)
	if peerNID < 0 || int(peerNID) >= types.MaxRemoteNodes || peerNID == node.NID() {
		return types.InvalidNID, types.NewError(types.NetworkKind, fmt.Errorf("invalid peer nid %d", peerNID))
	}
	if _, already := node.RemoteSenderPID(peerNID); already {
		return types.InvalidNID, types.NewError(types.NetworkKind, fmt.Errorf("nid %d already connected", peerNID))
	}
	return peerNID, nil
}

// startTriad spawns the connection supervisor, receiver, and sender
// processes and installs the sender as the node's remote-table entry for
// remoteNID (spec.md §4.6).
func startTriad(node *core.Node, remoteNID types.NID, conn net.Conn, cfg Config) error {
	connID := uuid.NewString()
	log := node.Logger().Named("distributer").With(map[string]interface{}{
		"connection_id": connID,
		"remote_nid":    remoteNID,
	})

	supervisorPID, err := node.Spawn(supervisorBody(node, remoteNID, conn, cfg, log, connID))
	if err != nil {
		return err
	}

	if _, err := node.Spawn(receiverBody(conn, supervisorPID, cfg, log)); err != nil {
		return err
	}

	senderPID, err := node.Spawn(senderBody(conn, supervisorPID, cfg, log))
	if err != nil {
		return err
	}

	if !node.SetRemote(remoteNID, senderPID) {
		return types.NewError(types.NetworkKind, fmt.Errorf("remote %d already connected", remoteNID))
	}
	node.RegisterRemoteCloser(remoteNID, conn.Close)
	log.Infof("triad established for remote %d", remoteNID)
	return nil
}
