package distributer

import (
	"net"
	"time"

	"github.com/jabolina/actorkit/pkg/actor/core"
	"github.com/jabolina/actorkit/pkg/actor/types"
)

// supervisorBody is the link target of both the sender and receiver of
// one triad. On a TIMEOUT exit from either, it respawns the sender and
// updates the remote-node table (a deliberate liveness nudge, spec.md §9);
// any other exit tears the whole triad down: shut down the socket, send
// the disconnect sentinel to whichever sender is still registered, and
// clear the remote-node table entry (spec.md §4.6), grounded in
// original_source/src/distributer.c's actor_distributer_connection_supervisor.
func supervisorBody(node *core.Node, remoteNID types.NID, conn net.Conn, cfg Config, log types.Logger, connID string) core.Body {
	return func(self *core.Process) error {
		for {
			msg, err := self.Receive(10 * time.Second)
			if err != nil {
				// Once the node is released the mailbox is closed and
				// Receive returns at once; stop instead of spinning.
				select {
				case <-node.Released():
					return nil
				default:
				}
				// No exit notification within the window; keep watching,
				// mirroring the original's "continue on non-success."
				continue
			}
			if !msg.IsExit() {
				continue
			}
			payload, ok := types.DecodeExit(msg.Bytes)
			if !ok {
				continue
			}

			released := false
			select {
			case <-node.Released():
				released = true
			default:
			}

			if payload.Kind == types.TimeoutKind && !released {
				newSenderPID, err := node.Spawn(senderBody(conn, self.Address().PID, cfg, log))
				if err != nil {
					log.Errorf("failed respawning sender for remote %d: %v", remoteNID, err)
					continue
				}
				node.ReplaceRemote(remoteNID, newSenderPID)
				node.Metrics().DistributerReconnects.Inc()
				log.Infof("respawned sender for remote %d after timeout", remoteNID)
				continue
			}

			log.Warnf("tearing down connection %s to remote %d: %s", connID, remoteNID, payload.Kind)
			node.UnregisterRemoteCloser(remoteNID)
			conn.Close()
			if senderPID, ok := node.RemoteSenderPID(remoteNID); ok {
				_ = node.Send(node.NID(), senderPID, node.NID(), senderPID, sentinelTag, sentinelPayload)
			}
			node.ClearRemote(remoteNID)
			return nil
		}
	}
}
