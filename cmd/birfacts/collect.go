package main

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"birfacts/internal/config"
	"birfacts/internal/diag"
	"birfacts/internal/factcollect"
	"birfacts/internal/facts"
	"birfacts/internal/fixture"
	"birfacts/internal/trace"
)

var (
	collectFixture    string
	collectOutDir     string
	collectCacheDir   string
	collectTraceLevel string
)

func init() {
	collectCmd.Flags().StringVar(&collectFixture, "fixture", "", fmt.Sprintf("built-in fixture to collect (%s)", strings.Join(fixture.Names(), "|")))
	collectCmd.Flags().StringVar(&collectOutDir, "out", "", "directory to write relation files into (overrides birfacts.toml)")
	collectCmd.Flags().StringVar(&collectCacheDir, "cache", "", "disk cache directory (overrides birfacts.toml)")
	collectCmd.Flags().StringVar(&collectTraceLevel, "trace-level", "", "off|error|phase|detail|debug (overrides birfacts.toml)")
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect borrow facts from a function and write its relations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if collectFixture == "" {
			return fmt.Errorf("--fixture is required (one of: %s)", strings.Join(fixture.Names(), ", "))
		}
		fn, types, ok := fixture.Named(collectFixture)
		if !ok {
			return fmt.Errorf("unknown fixture %q (known: %s)", collectFixture, strings.Join(fixture.Names(), ", "))
		}

		cfg, manifestPath, err := config.Load(".")
		if err != nil {
			return err
		}
		if collectOutDir != "" {
			cfg.Collect.OutDir = collectOutDir
		}
		if collectCacheDir != "" {
			cfg.Collect.CacheDir = collectCacheDir
		}
		if collectTraceLevel != "" {
			cfg.Collect.TraceLevel = collectTraceLevel
		}
		if manifestPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "using manifest %s\n", manifestPath)
		} else if collectOutDir == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), config.NoManifestMessage())
		}

		level, err := trace.ParseLevel(cfg.Collect.TraceLevel)
		if err != nil {
			return err
		}
		tracer, err := trace.New(trace.Config{Level: level, Mode: trace.ModeStream, OutputPath: "-"})
		if err != nil {
			return err
		}
		defer tracer.Close()
		hb := trace.StartHeartbeat(tracer, time.Second)
		defer hb.Stop()

		cache, err := facts.OpenDiskCache(cfg.Collect.CacheDir)
		if err != nil {
			return err
		}
		key := facts.Digest(sha256.Sum256([]byte(collectFixture)))
		if cached, hit, err := cache.Get(key); err != nil {
			return err
		} else if hit {
			if err := cached.WriteDir(cfg.Collect.OutDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache hit for %s\nrelations written to %s\n", collectFixture, cfg.Collect.OutDir)
			return nil
		}

		bag := diag.NewBag(100)
		reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

		if factcollect.HasClosure(fn, types) {
			diag.ReportError(reporter, diag.DrvClosureUnsupported, fn.Span,
				fmt.Sprintf("function %s mentions a closure type", fn.Name)).Emit()
			printSkipped(cmd, fn.Name, bag)
			return nil
		}

		c := factcollect.New(fn, types, reporter, tracer)
		result, collected := c.CollectGuarded(cmd.Context())
		if !collected {
			printSkipped(cmd, fn.Name, bag)
			return nil
		}

		if err := result.WriteDir(cfg.Collect.OutDir); err != nil {
			return err
		}
		// Only clean runs are cached: a hit skips collection entirely, which
		// would also skip re-reporting the run's diagnostics.
		if !bag.HasErrors() {
			if err := cache.Put(key, result); err != nil {
				return err
			}
		}

		printSummary(cmd, fn.Name, cfg.Collect.OutDir, bag)
		return nil
	},
}

func printSummary(cmd *cobra.Command, fnName, outDir string, bag *diag.Bag) {
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgRed, color.Bold)

	out := cmd.OutOrStdout()
	if bag.HasErrors() {
		warn.Fprintf(out, "collected %s with %d diagnostic(s)\n", fnName, bag.Len())
	} else {
		ok.Fprintf(out, "collected %s\n", fnName)
	}
	fmt.Fprintf(out, "relations written to %s\n", outDir)
	printDiagnostics(cmd, bag)
}

func printSkipped(cmd *cobra.Command, fnName string, bag *diag.Bag) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprintf(cmd.OutOrStdout(), "skipped %s\n", fnName)
	printDiagnostics(cmd, bag)
}

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag) {
	out := cmd.OutOrStdout()
	items := bag.Items()
	sorted := make([]diag.Diagnostic, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	for _, d := range sorted {
		fmt.Fprintf(out, "  %s %s: %s\n", d.Code.ID(), d.Severity, d.Message)
	}
}
