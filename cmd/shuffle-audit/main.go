package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	"github.com/VArrow2001/shuffle-audit/internal/config"
	"github.com/VArrow2001/shuffle-audit/internal/export"
	ioutils "github.com/VArrow2001/shuffle-audit/internal/io"
	"github.com/VArrow2001/shuffle-audit/internal/metrics"
	"github.com/VArrow2001/shuffle-audit/internal/sampling"
	"github.com/VArrow2001/shuffle-audit/internal/stats"
	"github.com/VArrow2001/shuffle-audit/internal/store"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

type globalFlags struct {
	config      string
	database    string
	verbose     bool
	headless    bool
	metricsAddr string
}

func main() {
	var g globalFlags

	flags := pflag.NewFlagSet("shuffle-audit", pflag.ExitOnError)
	flags.SetInterspersed(false)
	flags.StringVarP(&g.config, "config", "c", "", "Path to config file")
	flags.StringVar(&g.database, "db", "", "SQLite database path (overrides config)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Show verbose output")
	flags.BoolVar(&g.headless, "headless", false, "Run the browser headless")
	flags.StringVar(&g.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while sampling, e.g. :9090")
	flags.Usage = func() { usage(flags) }

	_ = flags.Parse(os.Args[1:])
	if flags.NArg() == 0 {
		usage(flags)
		os.Exit(1)
	}

	settings := config.DefaultSettings()
	if g.config != "" {
		var err error
		settings, err = config.Load(g.config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if g.database != "" {
		settings.DatabasePath = g.database
	}
	if g.headless {
		settings.Headless = true
	}

	cmd, args := flags.Arg(0), flags.Args()[1:]

	var err error
	switch cmd {
	case "tracklist":
		err = runTracklist(settings, g, args)
	case "sample":
		err = runSample(settings, g, args)
	case "report":
		err = runReport(settings, args)
	case "export":
		err = runExport(settings, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		usage(flags)
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nSampling stopped.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(flags *pflag.FlagSet) {
	fmt.Println("Shuffle Audit - Measure how uniform a playlist shuffle really is")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  shuffle-audit [options] tracklist            Scrape and cache the playlist's tracklist")
	fmt.Println("  shuffle-audit [options] sample [--target N]  Record shuffled passes")
	fmt.Println("  shuffle-audit [options] report               Print statistics over the stored passes")
	fmt.Println("  shuffle-audit [options] export [--format F]  Export the tracklist or the samples")
	fmt.Println()
	fmt.Println("For interactive mode, use: shuffle-audit-tui")
	fmt.Println()
	fmt.Println("Options:")
	flags.PrintDefaults()
}

// printer returns a progress callback that prefixes events by level and
// hides verbose ones unless asked.
func printer(verbose bool) func(sampling.ProgressEvent) {
	return func(event sampling.ProgressEvent) {
		if event.Level == sampling.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case sampling.LevelError:
			prefix = "❌ "
		case sampling.LevelWarning:
			prefix = "⚠️  "
		case sampling.LevelSuccess:
			prefix = "✅ "
		case sampling.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}
}

func header() {
	fmt.Println("🎲 Shuffle Audit")
	fmt.Println(rule)
	fmt.Println()
}

// withSampler starts the browser, opens the store and hands an initialized
// sampler to fn.
func withSampler(ctx context.Context, settings *config.Settings, cfg *sampling.Config, verbose bool, fn func(*sampling.Sampler) error) error {
	st, err := store.Open(ctx, settings.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	drv, err := browser.Start(ctx, settings.ToDriverConfig())
	if err != nil {
		return err
	}
	defer drv.Close()

	sampler := sampling.NewSampler(drv, st, cfg, printer(verbose))
	if err := sampler.Initialize(ctx); err != nil {
		return err
	}
	return fn(sampler)
}

func runTracklist(settings *config.Settings, g globalFlags, args []string) error {
	flags := pflag.NewFlagSet("tracklist", pflag.ExitOnError)
	cached := flags.Bool("cached", false, "Reuse a cached tracklist instead of scraping it again")
	_ = flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := settings.ToSamplerConfig()
	cfg.Rescrape = !*cached

	header()
	return withSampler(ctx, settings, cfg, g.verbose, func(s *sampling.Sampler) error {
		tl := s.Tracklist()
		fmt.Println()
		fmt.Println(rule)
		fmt.Printf("✨ Tracklist: %d tracks, catalogue numbers %d..%d\n", tl.Len(), first(tl.Numbers()), last(tl.Numbers()))
		fmt.Printf("   Saved to %s\n", settings.DatabasePath)
		return nil
	})
}

func runSample(settings *config.Settings, g globalFlags, args []string) error {
	flags := pflag.NewFlagSet("sample", pflag.ExitOnError)
	target := flags.IntP("target", "n", settings.TargetSamples, "Stop once this many passes are stored (0 = until interrupted)")
	passLength := flags.Int("pass-length", settings.PassLength, "Tracks recorded per pass (0 = whole tracklist)")
	rescrape := flags.Bool("rescrape", false, "Scrape the tracklist again instead of using the cached one")
	resolve := flags.Bool("resolve", false, "Ask which track is playing when several share its title")
	_ = flags.Parse(args)

	cfg := settings.ToSamplerConfig()
	cfg.PassLength = *passLength
	cfg.Rescrape = *rescrape

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	header()

	con := newConsole(os.Stdin, os.Stdout)
	var progress sampling.Progress
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		con.watchInterrupts(egCtx, stop, sigCh)
		return nil
	})
	if g.metricsAddr != "" {
		eg.Go(func() error {
			return metrics.Serve(egCtx, g.metricsAddr)
		})
	}
	eg.Go(func() error {
		defer stop()
		return withSampler(egCtx, settings, cfg, g.verbose, func(s *sampling.Sampler) error {
			if *resolve {
				s.SetResolver(con.resolver(egCtx))
			}
			fmt.Println("\n📊 Sampling... (Ctrl+C to stop)")
			fmt.Println()
			err := s.Run(egCtx, *target)
			progress = s.Progress()
			return err
		})
	})

	err := eg.Wait()
	if progress.Passes > 0 {
		fmt.Println()
		fmt.Println(rule)
		fmt.Printf("✨ %d passes stored. First-track mean %.2f, true mean %.2f\n", progress.Passes, progress.FirstTrackMean, progress.TrueMean)
		fmt.Println("   Run 'shuffle-audit report' for the full statistics.")
	}
	return err
}

func runReport(settings *config.Settings, args []string) error {
	flags := pflag.NewFlagSet("report", pflag.ExitOnError)
	_ = flags.Parse(args)

	ctx := context.Background()
	st, err := store.Open(ctx, settings.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	tl, err := st.LoadTracklist(ctx)
	if errors.Is(err, store.ErrNoTracklist) {
		return fmt.Errorf("%w; run 'shuffle-audit tracklist' first", err)
	}
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(ctx)
	if err != nil {
		return err
	}

	report, err := stats.Analyze(tl, samples)
	if err != nil {
		return err
	}
	stats.Render(os.Stdout, report)
	return nil
}

func runExport(settings *config.Settings, args []string) error {
	flags := pflag.NewFlagSet("export", pflag.ExitOnError)
	formatName := flags.StringP("format", "f", "m3u", "Tracklist format: m3u, pls or csv")
	out := flags.StringP("out", "o", "", "Tracklist output path (default tracklist.<format>)")
	samplesOut := flags.String("samples", "", "Also write the stored passes as CSV to this path")
	_ = flags.Parse(args)

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	if *out == "" {
		*out = "tracklist." + format.Extension()
	}

	ctx := context.Background()
	st, err := store.Open(ctx, settings.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	tl, err := st.LoadTracklist(ctx)
	if err != nil {
		return err
	}
	content, err := export.NewTracklistWriter(format, settings.BaseURL).Write(tl)
	if err != nil {
		return err
	}
	if err := ioutils.WriteFile(ctx, *out, content); err != nil {
		return err
	}
	fmt.Printf("✅ Wrote %d tracks to %s\n", tl.Len(), *out)

	if *samplesOut == "" {
		return nil
	}
	samples, err := st.LoadSamples(ctx)
	if err != nil {
		return err
	}
	content, err = export.SamplesCSV(samples)
	if err != nil {
		return err
	}
	if err := ioutils.WriteFile(ctx, filepath.Clean(*samplesOut), content); err != nil {
		return err
	}
	fmt.Printf("✅ Wrote %d passes to %s\n", samples.Len(), *samplesOut)
	return nil
}

func first(v []int) int {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func last(v []int) int {
	if len(v) == 0 {
		return 0
	}
	return v[len(v)-1]
}
