package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync pending actions to the server now",
	Long: `Run one sync cycle immediately.

Drains the pending-action queue against the inspections server in FIFO
order. A no-op when the server is unreachable or a cycle is already
running (daemon).`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(nil)
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		a.probe()
		if !a.monitor.Online() {
			fmt.Printf("%s Server unreachable; queued work stays local\n", ui.RenderWarn("⚠"))
			return
		}

		before := a.engine.Status()
		if before.PendingActions == 0 {
			fmt.Printf("%s Nothing to sync\n", ui.RenderPass("✓"))
			return
		}

		fmt.Printf("%s Syncing %d action(s)...\n", ui.RenderAccent("🔄"), before.PendingActions)
		start := time.Now()

		if err := a.engine.SyncPendingActions(context.Background()); err != nil {
			fatal("sync failed: %v", err)
		}

		// Let grace-period removals land before reporting.
		time.Sleep(a.cfg.Sync.GracePeriod + 100*time.Millisecond)

		after := a.engine.Status()
		elapsed := time.Since(start).Round(time.Millisecond)

		if after.FailedActions > 0 {
			fmt.Printf("%s Sync finished in %v with %d failed action(s)\n",
				ui.RenderFail("✗"), elapsed, after.FailedActions)
			fmt.Printf("   Run 'fieldsync actions' to inspect, 'fieldsync retry' to re-attempt\n")
			return
		}
		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), elapsed)
	},
}
