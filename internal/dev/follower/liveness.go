package follower

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/yndnr/graphdev-go/internal/dev/protocol"
)

// HealthCheck pings the leader on the heartbeat interval until a ping
// fails or ctx is done. The first failed round trip ends the loop and is
// returned; there is no retry budget, so a transient socket error is
// indistinguishable from a dead leader. Cancelling ctx stops the loop
// between pings and returns ctx.Err(); it does not interrupt a ping
// in flight.
func (m *Messenger) HealthCheck(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(m.interval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			// Wait also fails early when the next tick lies past the deadline.
			if ctx.Err() == nil {
				return context.DeadlineExceeded
			}
			return ctx.Err()
		}

		_, _, err := m.messageLeader(protocol.HealthCheck(m.fromMain()))
		if m.metrics != nil {
			m.metrics.RecordHeartbeat(err)
		}
		if err != nil {
			m.log.Error("leader stopped answering health checks", "error", err)
			return err
		}
	}
}
