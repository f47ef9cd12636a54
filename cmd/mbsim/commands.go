// FILE: lixenwraith/motherboard/cmd/mbsim/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/motherboard"
	"github.com/lixenwraith/motherboard/memhost"
)

var (
	configFile    string
	definition    string
	valuesFile    string
	scenarioFile  string
	overrideSpec  string
	verbosity     int
	showRegistry  bool
	showAddresses bool

	settings  *Settings
	logger    = logr.Discard()
	syncLogs  = func() {}
	errNoHost = errors.New("no host definition found")

	rootCmd = &cobra.Command{
		Use:   "mbsim",
		Short: "Render a motherboard device against an in-memory host",
		Long: `mbsim builds an in-memory host from a definition file and renders a probe
device against it, logging parameter, CV and note activity block by block.

Settings are read from mbsim.toml, MBSIM_ environment variables and
"--key=value" arguments after "--".`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { syncLogs() },
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Play a scenario, one host batch per block",
		RunE:  runScenario,
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Render in real time, applying changes of the values file",
		RunE:  runWatch,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print the host values as TOML",
		RunE:  runInspect,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "mbsim.toml", "Settings file")
	rootCmd.PersistentFlags().StringVarP(&definition, "definition", "d", "", "Host definition file (discovered when empty)")
	rootCmd.PersistentFlags().StringVar(&valuesFile, "values", "", "Values file applied before the first block")
	rootCmd.PersistentFlags().StringVar(&overrideSpec, "overrides", "", "CV overrides as param:socket pairs, comma separated")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Log verbosity, repeat for more (-vvvv debug, -vvvvv trace)")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&scenarioFile, "scenario", "s", "", "Scenario file")

	rootCmd.AddCommand(watchCmd)

	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&showRegistry, "registry", false, "Also list the probe's registry table")
	inspectCmd.Flags().BoolVar(&showAddresses, "addresses", false, "Print addresses, kinds and values instead of TOML")
}

// setup loads the settings and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	var extra []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		extra = args[dash:]
	}

	s, err := loadSettings(configFile, extra)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("definition") {
		s.Definition = definition
	}
	if flags.Changed("values") {
		s.Values = valuesFile
	}
	if flags.Changed("overrides") {
		s.Overrides = overrideSpec
	}
	if flags.Changed("scenario") {
		s.Scenario = scenarioFile
	}
	if flags.Changed("verbose") {
		s.Log.Verbosity = verbosity
	}
	if s.Render.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", s.Render.SampleRate)
	}
	settings = s

	l, sync, err := newLogger(s)
	if err != nil {
		return err
	}
	logger, syncLogs = l, sync
	return nil
}

// buildHost builds the in-memory host and the probe device from the settings.
func buildHost() (*memhost.Host, *probe, error) {
	b := memhost.NewBuilder().
		WithLogger(logger).
		WithInitialBatch(settings.Render.InitialDiff)
	if settings.Definition != "" {
		b = b.WithDefinitionFile(settings.Definition)
	} else {
		b = b.WithDiscoveredDefinition(memhost.DefaultDiscoveryOptions("mbsim"))
	}
	if settings.Values != "" {
		b = b.WithValuesFile(settings.Values)
	}

	h, err := b.Build()
	if err != nil {
		if errors.Is(err, memhost.ErrInvalidDefinition) && settings.Definition == "" {
			return nil, nil, fmt.Errorf("%w: pass --definition or create mbsim.toml under the config directory", errNoHost)
		}
		return nil, nil, err
	}

	overrides, err := parseOverrides(settings.Overrides)
	if err != nil {
		return nil, nil, err
	}
	p, err := newProbe(h, overrides, settings, logger)
	if err != nil {
		return nil, nil, err
	}
	return h, p, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	h, p, err := buildHost()
	if err != nil {
		return err
	}

	if settings.Scenario == "" {
		p.RenderBatch(h.Flush())
	} else {
		sc, err := memhost.LoadScenario(settings.Scenario)
		if err != nil {
			return err
		}
		// The first batch carries the initial host state.
		p.RenderBatch(h.Flush())
		if err := h.Play(sc, p); err != nil {
			return err
		}
	}

	clock := motherboard.Clock{SampleRate: settings.Render.SampleRate}
	logger.Info("done",
		"blocks", p.blocks,
		"rendered", clock.DurationFor(uint32(p.blocks*motherboard.BatchSize)),
		"changes", p.changes, "notes", p.events, "stores", h.TotalStores())
	for param, v := range p.resolved() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %g\n", param, v)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if settings.Values == "" {
		return errors.New("watch needs a values file (--values)")
	}
	h, p, err := buildHost()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes, err := h.Watch(ctx, settings.Values, memhost.DefaultWatchOptions())
	if err != nil {
		return err
	}

	period := motherboard.BatchDuration(settings.Render.SampleRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	logger.Info("watching", "values", settings.Values, "blockPeriod", period)

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopped", "blocks", p.blocks)
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if strings.HasPrefix(change, "/") {
				logger.V(1).Info("staged", "path", change)
			} else {
				logger.Info("watcher notification", "event", change)
			}
		case <-ticker.C:
			p.RenderBatch(h.Flush())
		}
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	h, p, err := buildHost()
	if err != nil {
		return err
	}
	// Staged values are applied so that they show up.
	p.RenderBatch(h.Flush())

	out := cmd.OutOrStdout()
	if showAddresses {
		fmt.Fprint(out, h.Debug())
	} else if err := h.Dump(out); err != nil {
		return err
	}

	if showRegistry {
		fmt.Fprintf(out, "\n# registry: %d entries\n", p.registry.Len())
		for addr, obs := range p.registry.All() {
			path, _ := h.PathOf(addr)
			fmt.Fprintf(out, "# %s %s -> %v\n", addr, path, obs)
		}
	}
	return nil
}

func execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
