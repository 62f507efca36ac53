package distributer

import (
	"net"
	"time"

	"github.com/jabolina/actorkit/pkg/actor/core"
	"github.com/jabolina/actorkit/pkg/actor/types"
)

// receiverBody loops reading frames off conn and delivering them locally,
// grounded in original_source/src/distributer.c's
// actor_distributer_message_receive. A read that times out surfaces as
// TIMEOUT (the silent-peer case spec.md §5/§9 calls for); any other short
// read or closed connection surfaces as NETWORK.
func receiverBody(conn net.Conn, supervisorPID types.PID, cfg Config, log types.Logger) core.Body {
	return func(self *core.Process) error {
		self.Link(self.Node().NID(), supervisorPID)
		ownNID := self.Node().NID()

		for {
			if err := conn.SetReadDeadline(time.Now().Add(cfg.idleTimeout())); err != nil {
				return types.NewError(types.NetworkKind, err)
			}
			h, payload, err := readFrame(conn)
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					return types.ErrTimeout
				}
				return types.NewError(types.NetworkKind, err)
			}
			self.Node().Metrics().DistributerBytesTotal.WithLabelValues("rx").Add(float64(headerSize) + float64(len(payload)))

			if err := self.Send(ownNID, h.destPID, h.tag, payload); err != nil {
				log.Warnf("failed delivering frame to local pid %s: %v", h.destPID, err)
			}
		}
	}
}
