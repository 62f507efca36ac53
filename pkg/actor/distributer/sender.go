package distributer

import (
	"net"
	"time"

	"github.com/jabolina/actorkit/pkg/actor/core"
	"github.com/jabolina/actorkit/pkg/actor/types"
)

// senderBody loops taking from its own mailbox, framing each message onto
// conn. A self-addressed message is the shutdown sentinel: the sender
// releases it and returns cleanly (spec.md §4.6), grounded directly in
// original_source/src/distributer.c's actor_distributer_message_send.
func senderBody(conn net.Conn, supervisorPID types.PID, cfg Config, log types.Logger) core.Body {
	return func(self *core.Process) error {
		self.Link(self.Node().NID(), supervisorPID)
		addr := self.Address()

		for {
			msg, err := self.Receive(cfg.idleTimeout())
			if err != nil {
				// An idle mailbox for the whole timeout window surfaces as
				// TIMEOUT, which the connection supervisor treats as a
				// liveness nudge and restarts the sender (spec.md §9).
				return err
			}

			if msg.DestNID == addr.NID && msg.DestPID == addr.PID {
				log.Debugf("sender %s received shutdown sentinel", addr)
				return nil
			}

			h := header{destPID: msg.DestPID, size: msg.Size(), tag: msg.Type}
			if err := conn.SetWriteDeadline(time.Now().Add(cfg.idleTimeout())); err != nil {
				return types.NewError(types.NetworkKind, err)
			}
			if err := writeFrame(conn, h, msg.Bytes); err != nil {
				return types.NewError(types.NetworkKind, err)
			}
			self.Node().Metrics().DistributerBytesTotal.WithLabelValues("tx").Add(float64(headerSize) + float64(len(msg.Bytes)))
		}
	}
}
