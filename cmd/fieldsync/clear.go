package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/ui"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all local offline data",
	Long: `Delete the cached snapshot, the pending-action queue, and the last-sync
marker. Queued work that has not synced is lost; use with care.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		a, err := buildApp(quietLogger())
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		if pending := a.engine.Queue().Len(); pending > 0 && !force {
			fatal("%d action(s) still queued; pass --force to discard them", pending)
		}

		if err := a.engine.ClearOfflineData(); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s Offline data cleared\n", ui.RenderPass("✓"))
	},
}

func init() {
	clearCmd.Flags().Bool("force", false, "discard unsynced actions")
}
