package service

import (
	"context"
	"log"
	"time"
)

// RunSweeper invokes SweepExpired on every tick until the context is
// cancelled.  The sweep is idempotent, so this loop can coexist with the
// lazy sweep performed on seat-grid reads and with other instances.
func RunSweeper(ctx context.Context, svc *ReservationService, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.SweepExpired(ctx)
			if err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: expired %d reservation(s)", n)
			}
		}
	}
}
