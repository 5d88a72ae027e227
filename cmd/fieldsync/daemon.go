package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/safetycheck/fieldsync/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the sync daemon",
	Long: `Run the long-lived sync daemon.

The daemon:
  1. Watches the spool directory for completed-inspection files from the
     form UI and queues them for upload
  2. Monitors server reachability and syncs automatically on reconnect
  3. Serves live sync status over WebSocket for the app's status bar`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(nil)
		if err != nil {
			fatal("%v", err)
		}
		defer a.close()

		logger := log.New(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   a.cfg.Daemon.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}), "[fieldsync] ", log.LstdFlags)

		d, err := daemon.New(a.engine, a.monitor, &daemon.Config{
			SpoolDir:   a.cfg.Daemon.SpoolDir,
			ListenAddr: a.cfg.Daemon.ListenAddr,
			Logger:     logger,
		})
		if err != nil {
			fatal("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("fieldsync daemon starting (spool: %s, status: %s)\n",
			a.cfg.Daemon.SpoolDir, a.cfg.Daemon.ListenAddr)

		if err := d.Start(ctx); err != nil {
			fatal("daemon failed: %v", err)
		}
	},
}
