package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stencilkit/stencil/internal/registry"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch the template root and report template changes",
	Long: `Watch invalidates the render cache on filesystem changes under the
template root and periodically rescans the registry, reporting templates
that appear, change, or vanish. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "registry rescan interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.New(cfg.Templates.Root)
	if err := reg.Scan(); err != nil {
		return err
	}
	events := reg.Watch()

	go func() {
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := reg.Scan(); err != nil {
					logger.Warn(ctx, err, "registry rescan failed")
				}
			}
		}
	}()

	go func() {
		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				switch ev.Type {
				case registry.EventTypeAdded:
					fmt.Fprintf(out, "added    %s\n", ev.Template.Name)
				case registry.EventTypeUpdated:
					fmt.Fprintf(out, "updated  %s\n", ev.Template.Name)
				case registry.EventTypeRemoved:
					fmt.Fprintf(out, "removed  %s\n", ev.Template.Name)
				}
			}
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", cfg.Templates.Root)

	if err := engine.Watch(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}
