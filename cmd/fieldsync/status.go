package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Display the current offline sync status.

Shows connectivity, pending and failed action counts, the last successful
sync time, and local storage usage.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(quietLogger())
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		a.probe()
		s := a.engine.Status()

		fmt.Println()
		if s.IsOnline {
			fmt.Printf("%s Online\n", ui.RenderPass("●"))
		} else {
			fmt.Printf("%s Offline\n", ui.RenderWarn("●"))
		}

		if s.LastSync != nil {
			fmt.Printf("   Last sync: %s\n", s.LastSync.Local().Format("2006-01-02 15:04:05"))
		} else {
			fmt.Printf("   Last sync: %s\n", ui.RenderDim("never"))
		}

		fmt.Printf("   Pending:   %d\n", s.PendingActions)
		if s.FailedActions > 0 {
			fmt.Printf("   Failed:    %s\n", ui.RenderFail(fmt.Sprintf("%d", s.FailedActions)))
		} else {
			fmt.Printf("   Failed:    0\n")
		}

		info := a.engine.StorageInfo()
		fmt.Printf("   Storage:   %d KB (snapshot %d KB, queue %d KB)\n",
			info.TotalKB, info.SnapshotKB, info.PendingActionsKB)

		if snap, ok := a.engine.Cache().Current(); ok {
			fmt.Printf("   Snapshot:  %d work orders, %d templates\n",
				len(snap.WorkOrders), len(snap.Templates))
		} else {
			fmt.Printf("   Snapshot:  %s\n", ui.RenderDim("not downloaded"))
		}
		fmt.Println()
	},
}
