package tui

import (
	"context"
	"time"
)

// RunHeadless runs the frame cycle without a terminal: no drawing and no
// pointer input, only the cancellation check. Blocks until ctx is done and
// shutdown has run.
func RunHeadless(ctx context.Context, fps int, shutdown func()) {
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	for range ticker.C {
		if ctx.Err() != nil {
			shutdown()
			return
		}
	}
}
