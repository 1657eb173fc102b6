package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fortio.org/safecast"

	"birfacts/internal/config"
	"birfacts/internal/diag"
	"birfacts/internal/factcollect"
	"birfacts/internal/fixture"
	"birfacts/internal/trace"
	"birfacts/internal/ui"
)

var watchJobs int

func init() {
	watchCmd.Flags().IntVar(&watchJobs, "jobs", 0, "max concurrent collectors (0 = GOMAXPROCS)")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Collect every built-in fixture concurrently with a live progress view",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load(".")
		if err != nil {
			return err
		}

		names := fixture.Names()
		events := make(chan ui.Event, len(names))
		model := ui.NewProgressModel("collecting fixtures", names, events)
		program := tea.NewProgram(model)

		jobs := watchJobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}

		g, gctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)
		for _, name := range names {
			g.Go(func() error {
				return collectOne(gctx, name, cfg.Collect.OutDir, events)
			})
		}

		go func() {
			_ = g.Wait()
			close(events)
		}()

		_, runErr := program.Run()
		if runErr != nil {
			return runErr
		}
		return nil
	},
}

func collectOne(ctx context.Context, name, outDir string, events chan<- ui.Event) error {
	events <- ui.Event{Fixture: name, Status: ui.StatusRunning}

	fn, types, ok := fixture.Named(name)
	if !ok {
		events <- ui.Event{Fixture: name, Status: ui.StatusError}
		return fmt.Errorf("unknown fixture %q", name)
	}

	bag := diag.NewBag(100)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	if factcollect.HasClosure(fn, types) {
		events <- ui.Event{Fixture: name, Status: ui.StatusError}
		return fmt.Errorf("fixture %q mentions a closure type; skipped", name)
	}

	c := factcollect.New(fn, types, reporter, trace.Nop)
	result, collected := c.CollectGuarded(ctx)
	if !collected {
		events <- ui.Event{Fixture: name, Status: ui.StatusError}
		return fmt.Errorf("fixture %q hit an unimplemented construct: %s", name, bag.Items()[bag.Len()-1].Message)
	}

	if err := result.WriteDir(filepath.Join(outDir, name)); err != nil {
		events <- ui.Event{Fixture: name, Status: ui.StatusError}
		return err
	}

	total := len(result.CfgEdge) + len(result.SubsetBase) + len(result.PathAccessedAtBase)
	rows32, err := safecast.Conv[int32](total)
	if err != nil {
		return fmt.Errorf("fixture %q produced an implausible row count: %w", name, err)
	}
	events <- ui.Event{Fixture: name, Status: ui.StatusDone, Rows: int(rows32)}
	return nil
}
