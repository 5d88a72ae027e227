package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/ui"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List queued actions",
	Long:  `List every queued action with its type, age, status, and retry count.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(quietLogger())
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		actions := a.engine.Queue().List()
		if len(actions) == 0 {
			fmt.Printf("%s Queue is empty\n", ui.RenderPass("✓"))
			return
		}

		fmt.Printf("\n%d queued action(s):\n\n", len(actions))
		for _, act := range actions {
			glyph := ui.RenderDim("•")
			switch act.Status {
			case action.StatusSyncing:
				glyph = ui.RenderAccent("↻")
			case action.StatusCompleted:
				glyph = ui.RenderPass("✓")
			case action.StatusFailed:
				glyph = ui.RenderFail("✗")
			}

			fmt.Printf("  %s %-20s %-8s retries %d/%d  %s\n",
				glyph, act.Type, act.Status, act.RetryCount, act.MaxRetries,
				ui.RenderDim(act.Timestamp.Local().Format("2006-01-02 15:04")))
			fmt.Printf("     %s\n", ui.RenderDim(act.ID))
		}
		fmt.Println()
	},
}
