package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/ui"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry failed actions",
	Long: `Reset all failed actions to pending with a fresh retry budget.

If the server is reachable, a sync cycle runs immediately; otherwise the
actions wait for the next reconnect.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(nil)
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		a.probe()

		n := a.engine.RetryFailedActions(context.Background())
		if n == 0 {
			fmt.Printf("%s No failed actions\n", ui.RenderPass("✓"))
			return
		}

		if a.monitor.Online() {
			fmt.Printf("%s Re-attempted %d action(s)\n", ui.RenderAccent("🔄"), n)
		} else {
			fmt.Printf("%s Reset %d action(s); they will sync on reconnect\n", ui.RenderWarn("⚠"), n)
		}
	},
}
