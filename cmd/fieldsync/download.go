package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/ui"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download work orders for offline use",
	Long: `Fetch the assigned work orders, templates, and user profile from the
inspections server and store them locally for offline work.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(nil)
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		a.probe()
		if !a.monitor.Online() {
			fatal("server unreachable; cannot download")
		}

		fmt.Printf("%s Downloading offline snapshot...\n", ui.RenderAccent("⇣"))
		start := time.Now()

		snap, err := a.client.FetchSnapshot(context.Background())
		if err != nil {
			fatal("%v", err)
		}

		if err := a.engine.DownloadForOffline(snap); err != nil {
			fatal("%v", err)
		}

		fmt.Printf("%s Downloaded %d work orders and %d templates in %v\n",
			ui.RenderPass("✓"), len(snap.WorkOrders), len(snap.Templates),
			time.Since(start).Round(time.Millisecond))
	},
}
