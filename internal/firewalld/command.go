package firewalld

import (
	"log/slog"

	shellquote "github.com/kballard/go-shellquote"
)

const firewallCmd = "firewall-cmd"

var _ Querier = (*Firewalld)(nil)

// Firewalld queries firewalld through firewall-cmd. Every method issues a
// single command through the runner and parses what it prints; errors from
// the runner are returned as is.
type Firewalld struct {
	runner Runner
}

// New returns a Firewalld that issues its commands through runner.
func New(runner Runner) *Firewalld {
	return &Firewalld{runner: runner}
}

// Zones returns the names of all configured zones.
func (f *Firewalld) Zones(permanent bool) ([]string, error) {
	out, err := f.run(ZonesCommand(permanent))
	if err != nil {
		return nil, err
	}
	return splitSpaces(out), nil
}

// Services returns the services known to firewalld, in the order
// firewall-cmd prints them.
func (f *Firewalld) Services(permanent bool) ([]string, error) {
	out, err := f.run(ServicesCommand(permanent))
	if err != nil {
		return nil, err
	}
	return ParseServices(out), nil
}

// InfoZone returns the settings of zone. An empty zone selects
// DefaultZoneName.
func (f *Firewalld) InfoZone(zone string, permanent bool) (ZoneInfo, error) {
	out, err := f.run(InfoZoneCommand(zone, permanent))
	if err != nil {
		return nil, err
	}
	return ParseZoneInfo(out), nil
}

// DefaultZone returns the name of the default zone.
func (f *Firewalld) DefaultZone(permanent bool) (string, error) {
	out, err := f.run(DefaultZoneCommand(permanent))
	if err != nil {
		return "", err
	}
	return ParseDefaultZone(out), nil
}

// Ports returns the port descriptors opened in zone. An empty zone leaves
// the choice to firewall-cmd, which uses the default zone.
func (f *Firewalld) Ports(zone string, permanent bool) ([]string, error) {
	out, err := f.run(PortsCommand(zone, permanent))
	if err != nil {
		return nil, err
	}
	return ParsePorts(out), nil
}

func (f *Firewalld) run(command string) (string, error) {
	slog.Debug("run firewall-cmd", "command", command)
	return f.runner.CheckOutput(command)
}

// ZonesCommand builds the command listing all zones.
func ZonesCommand(permanent bool) string {
	return firewallCmd + " " + permanentFlag(permanent) + "--get-zones"
}

// ServicesCommand builds the command listing the known services.
func ServicesCommand(permanent bool) string {
	return firewallCmd + " " + permanentFlag(permanent) + "--get-services"
}

// InfoZoneCommand builds the command describing zone. An empty zone
// selects DefaultZoneName.
func InfoZoneCommand(zone string, permanent bool) string {
	if zone == "" {
		zone = DefaultZoneName
	}
	return firewallCmd + " " + permanentFlag(permanent) + shellquote.Join("--info-zone="+zone)
}

// DefaultZoneCommand builds the command printing the default zone.
func DefaultZoneCommand(permanent bool) string {
	return firewallCmd + " " + permanentFlag(permanent) + "--get-default-zone"
}

// PortsCommand builds the command listing the ports of zone. An empty zone
// omits --zone.
func PortsCommand(zone string, permanent bool) string {
	return firewallCmd + " " + permanentFlag(permanent) + zoneFlag(zone) + "--list --ports"
}

func permanentFlag(permanent bool) string {
	if permanent {
		return "--permanent "
	}
	return ""
}

func zoneFlag(zone string) string {
	if zone == "" {
		return ""
	}
	return shellquote.Join("--zone="+zone) + " "
}
