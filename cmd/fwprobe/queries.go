//go:build linux
// +build linux

package main

import (
	"fmt"

	"fwprobe/internal/firewalld"
	"fwprobe/internal/report"
	"fwprobe/internal/ui"
	"fwprobe/internal/validation"
	"fwprobe/internal/version"

	"github.com/spf13/cobra"
)

// withSession opens the configured backend, runs fn against it and closes
// it again, keeping fn's error first.
func withSession(cmd *cobra.Command, o *options, fn func(firewalld.Querier, *report.Renderer) error) (err error) {
	r, err := report.New(cmd.OutOrStdout(), o.output, !o.noColor)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), o)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s.querier, r)
}

func configLabel(permanent bool) string {
	if permanent {
		return "permanent"
	}
	return "runtime"
}

func newServicesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services firewalld knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, o, func(q firewalld.Querier, r *report.Renderer) error {
				services, err := q.Services(o.permanent)
				if err != nil {
					return err
				}
				return r.List(fmt.Sprintf("Services (%s)", configLabel(o.permanent)), services)
			})
		},
	}
}

func newZoneInfoCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "zone-info [zone]",
		Short: "Show the settings of a zone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone := o.zone
			if len(args) == 1 {
				zone = args[0]
			}
			if zone == "" {
				zone = firewalld.DefaultZoneName
			}
			if err := validation.Zone(zone); err != nil {
				return fmt.Errorf("zone %q: %w", zone, err)
			}
			return withSession(cmd, o, func(q firewalld.Querier, r *report.Renderer) error {
				info, err := q.InfoZone(zone, o.permanent)
				if err != nil {
					return err
				}
				return r.ZoneInfo(info)
			})
		},
	}
}

func newDefaultZoneCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "default-zone",
		Short: "Print the default zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, o, func(q firewalld.Querier, r *report.Renderer) error {
				zone, err := q.DefaultZone(o.permanent)
				if err != nil {
					return err
				}
				return r.Value("Default zone", zone)
			})
		},
	}
}

func newPortsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List the ports opened in a zone",
		Long:  "List the ports opened in a zone. An empty --zone lets firewall-cmd use the default zone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.OptionalZone(o.zone); err != nil {
				return fmt.Errorf("zone %q: %w", o.zone, err)
			}
			return withSession(cmd, o, func(q firewalld.Querier, r *report.Renderer) error {
				ports, err := q.Ports(o.zone, o.permanent)
				if err != nil {
					return err
				}
				title := fmt.Sprintf("Ports (%s)", configLabel(o.permanent))
				if o.zone != "" {
					title = fmt.Sprintf("Ports in %s (%s)", o.zone, configLabel(o.permanent))
				}
				return r.List(title, ports)
			})
		},
	}
}

func newZonesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List the configured zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, o, func(q firewalld.Querier, r *report.Renderer) error {
				zones, err := q.Zones(o.permanent)
				if err != nil {
					return err
				}
				return r.List(fmt.Sprintf("Zones (%s)", configLabel(o.permanent)), zones)
			})
		},
	}
}

func newBrowseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse zones interactively (read-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.OptionalZone(o.zone); err != nil {
				return fmt.Errorf("zone %q: %w", o.zone, err)
			}
			return withSession(cmd, o, func(q firewalld.Querier, _ *report.Renderer) error {
				return ui.RunWithContext(cmd.Context(), q, ui.Options{
					Permanent: o.permanent,
					Zone:      o.zone,
					NoColor:   o.noColor,
				})
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no config or logger needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
