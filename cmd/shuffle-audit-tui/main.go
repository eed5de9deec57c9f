package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	"github.com/VArrow2001/shuffle-audit/internal/config"
	"github.com/VArrow2001/shuffle-audit/internal/sampling"
	"github.com/VArrow2001/shuffle-audit/internal/store"
	"github.com/VArrow2001/shuffle-audit/internal/tui"
	"github.com/VArrow2001/shuffle-audit/internal/yandex"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to config file")
	target := pflag.IntP("target", "n", -1, "Stop once this many passes are stored (0 = until stopped)")
	verbose := pflag.BoolP("verbose", "v", false, "Show verbose output")
	resolve := pflag.Bool("resolve", false, "Ask which track is playing when several share its title")
	pflag.Parse()

	opts := tui.Options{Target: *target, Verbose: *verbose, Resolve: *resolve}
	if err := run(*configPath, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, opts tui.Options) error {
	settings := config.DefaultSettings()
	if configPath != "" {
		var err error
		settings, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if opts.Target < 0 {
		opts.Target = settings.TargetSamples
	}

	ctx := context.Background()
	st, err := store.Open(ctx, settings.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Println("Starting browser...")
	drv, err := browser.Start(ctx, settings.ToDriverConfig())
	if err != nil {
		return err
	}
	defer drv.Close()

	return tui.Run(settings, opts, func(onProgress func(sampling.ProgressEvent), resolver yandex.Resolver) tui.Runner {
		sampler := sampling.NewSampler(drv, st, settings.ToSamplerConfig(), onProgress)
		sampler.SetResolver(resolver)
		return sampler
	})
}
