// Package shutdown coordinates graceful teardown of a dev session.
//
// A Handler waits for SIGINT/SIGTERM, cancellation of a context, or an
// explicit Trigger, then runs registered hooks in reverse order under a
// timeout. Typical hooks remove the subgraph from the leader and stop the
// leader socket.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
