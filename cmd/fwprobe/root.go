//go:build linux
// +build linux

package main

import (
	"fmt"
	"log/slog"
	"time"

	"fwprobe/internal/config"
	"fwprobe/internal/logger"

	"github.com/spf13/cobra"
)

// options are the effective settings: config file values overridden by the
// flags the user actually set.
type options struct {
	permanent bool
	zone      string
	backend   string
	mockFile  string
	record    string
	sudo      bool
	shell     []string
	timeout   time.Duration
	output    string
	logLevel  string
	noColor   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "fwprobe",
		Short:         "Query firewalld state for infrastructure tests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.permanent, "permanent", "p", false, "query the permanent instead of the runtime configuration")
	flags.StringVarP(&opts.zone, "zone", "z", "", "zone to query (default from config, \"public\")")
	flags.StringVar(&opts.backend, "backend", "", "where queries run: local|mock|dbus")
	flags.StringVar(&opts.mockFile, "mock-file", "", "TOML fixture replayed by the mock backend")
	flags.StringVar(&opts.record, "record", "", "save every command result to this TOML fixture")
	flags.BoolVar(&opts.sudo, "sudo", false, "run firewall-cmd through sudo")
	flags.DurationVar(&opts.timeout, "timeout", 0, "limit for the whole invocation (0 uses config)")
	flags.StringVarP(&opts.output, "output", "o", "", "output format: text|json|yaml")
	flags.StringVar(&opts.logLevel, "log-level", "", "set log level (debug|info|warn|error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable color output")

	root.AddCommand(
		newServicesCmd(opts),
		newZoneInfoCmd(opts),
		newDefaultZoneCmd(opts),
		newPortsCmd(opts),
		newZonesCmd(opts),
		newBrowseCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) resolve(cmd *cobra.Command) error {
	cfg, warnings, path, found, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("log-level") {
		o.logLevel = cfg.Advanced.LogLevel
	}
	if err := logger.Init(o.logLevel); err != nil {
		return err
	}
	if found {
		slog.Debug("config loaded", "path", path)
	}
	for _, w := range warnings {
		slog.Warn("config", "warning", w)
	}

	if !flags.Changed("permanent") {
		o.permanent = cfg.Query.Permanent
	}
	if !flags.Changed("zone") {
		o.zone = cfg.Query.Zone
	}
	if !flags.Changed("backend") {
		o.backend = cfg.Backend.Kind
	}
	if !flags.Changed("mock-file") {
		o.mockFile = cfg.Backend.MockFile
	}
	if !flags.Changed("sudo") {
		o.sudo = cfg.Backend.Sudo
	}
	if !flags.Changed("timeout") {
		o.timeout = cfg.Backend.Timeout.Duration
	}
	if !flags.Changed("output") {
		o.output = cfg.Output.Format
	}
	if !flags.Changed("no-color") {
		o.noColor = cfg.Output.NoColor
	}
	o.shell = cfg.Backend.Shell

	switch o.backend {
	case config.BackendLocal, config.BackendDBus:
	case config.BackendMock:
		if o.mockFile == "" {
			return fmt.Errorf("--backend mock needs --mock-file")
		}
	default:
		return fmt.Errorf("unknown backend %q (use local|mock|dbus)", o.backend)
	}
	if o.record != "" && o.backend == config.BackendDBus {
		return fmt.Errorf("--record needs a command backend (local or mock)")
	}
	return nil
}
