// Command fieldsync is the offline sync engine for the SafetyCheck field
// app: it queues inspection work done while disconnected and reconciles it
// with the inspections server when connectivity returns.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/api"
	"github.com/safetycheck/fieldsync/internal/config"
	"github.com/safetycheck/fieldsync/internal/connectivity"
	"github.com/safetycheck/fieldsync/internal/snapshot"
	"github.com/safetycheck/fieldsync/internal/store"
	enginesync "github.com/safetycheck/fieldsync/internal/sync"
)

var (
	cfgFile     string
	flagOffline bool
)

var rootCmd = &cobra.Command{
	Use:   "fieldsync",
	Short: "Offline action queue and sync engine for SafetyCheck inspections",
	Long: `fieldsync keeps field-inspection work safe while disconnected.

Completed inspections, photos, and signatures queue locally in a durable
store and sync to the inspections server when connectivity returns. Failed
uploads are retried with a bounded budget and surfaced for operator review.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.fieldsync/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "treat the server as unreachable")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(clearCmd)
}

// app bundles the wired engine for one CLI invocation.
type app struct {
	cfg     *config.Config
	st      store.Store
	client  *api.HTTPClient
	monitor *connectivity.Monitor
	engine  *enginesync.Engine
}

// quietLogger suppresses component logs for display commands.
func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// buildApp wires the engine the way the daemon and the one-shot commands
// both need it. A nil logger leaves each component on its stderr default.
func buildApp(logger *log.Logger) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	var st store.Store
	sqlite, err := store.Open(cfg.DB.Path)
	if err != nil {
		// Degraded mode: keep the session alive without durability.
		fmt.Fprintf(os.Stderr, "Warning: store unavailable (%v), running in-memory\n", err)
		st = store.NewMemory()
	} else {
		st = sqlite
	}

	client := api.NewHTTPClient(cfg.API.BaseURL, cfg.API.Timeout)

	monitor := connectivity.NewMonitor(client, cfg.Heartbeat.Interval, logger)

	queue := action.NewQueue(st, logger)
	cache := snapshot.NewCache(st, logger)

	engineCfg := enginesync.DefaultConfig()
	engineCfg.GracePeriod = cfg.Sync.GracePeriod
	engineCfg.ProgressResetDelay = cfg.Sync.ProgressResetDelay
	if logger != nil {
		engineCfg.Logger = logger
	}

	engine := enginesync.New(st, queue, cache, client, monitor, engineCfg)

	return &app{
		cfg:     cfg,
		st:      st,
		client:  client,
		monitor: monitor,
		engine:  engine,
	}, nil
}

// probe establishes the initial online state for one-shot commands.
func (a *app) probe() {
	if flagOffline {
		a.monitor.SetOnline(false)
		return
	}
	a.monitor.Start()
	a.monitor.Stop()
}

func (a *app) close() {
	a.engine.Close()
	if err := a.st.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
