package firewalld

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

var zoneHeaderRe = regexp.MustCompile(`^[a-z]`)

// ParseServices splits the output of --get-services on single spaces.
func ParseServices(output string) []string {
	return splitSpaces(output)
}

// ParsePorts splits the output of --list --ports on single spaces. The
// descriptors are returned as printed; see ParsePortDescriptor.
func ParsePorts(output string) []string {
	return splitSpaces(output)
}

// ParseDefaultZone returns the zone name printed by --get-default-zone.
func ParseDefaultZone(output string) string {
	return strings.TrimSpace(output)
}

// ParseZoneInfo parses --info-zone output. A line starting with a lowercase
// letter opens a zone section keyed by the trimmed line. Any other line is
// split on its first colon and stored under the open section. Lines before
// the first section, blank lines and lines without a colon are dropped.
func ParseZoneInfo(output string) ZoneInfo {
	info := ZoneInfo{}
	var current map[string]string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if zoneHeaderRe.MatchString(line) {
			current = make(map[string]string)
			info[strings.TrimSpace(line)] = current
			continue
		}
		if current == nil {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		current[key] = strings.TrimSpace(value)
	}
	return info
}

// splitSpaces drops the trailing line terminator and splits on single
// spaces. Empty output yields an empty slice.
func splitSpaces(output string) []string {
	output = strings.TrimRight(output, "\r\n")
	if output == "" {
		return []string{}
	}
	return strings.Split(output, " ")
}

// Names returns the zone headers in info, sorted.
func (info ZoneInfo) Names() []string {
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Zone converts the section stored under header into a Zone. The header may
// carry firewall-cmd markers such as "public (default, active)".
func (info ZoneInfo) Zone(header string) (*Zone, bool) {
	settings, ok := info[header]
	if !ok {
		return nil, false
	}

	name, active, isDefault := ParseZoneHeader(header)
	z := &Zone{
		Name:        name,
		Active:      active,
		Default:     isDefault,
		Target:      settings["target"],
		Services:    strings.Fields(settings["services"]),
		Protocols:   strings.Fields(settings["protocols"]),
		Masquerade:  settings["masquerade"] == "yes",
		Interfaces:  strings.Fields(settings["interfaces"]),
		Sources:     strings.Fields(settings["sources"]),
		IcmpBlocks:  strings.Fields(settings["icmp-blocks"]),
		IcmpInvert:  settings["icmp-block-inversion"] == "yes",
		Short:       settings["short"],
		Description: settings["description"],
	}
	z.RichRules = splitRichRules(settings["rich rules"])
	for _, field := range strings.Fields(settings["ports"]) {
		p, err := ParsePortDescriptor(field)
		if err != nil {
			slog.Warn("skipping port", "zone", name, "port", field, "error", err)
			continue
		}
		z.Ports = append(z.Ports, p)
	}
	return z, true
}

// splitRichRules returns one entry per rule. Several rules share a value
// separated by newlines, each continuation indented with a tab.
func splitRichRules(value string) []string {
	var rules []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rules = append(rules, line)
		}
	}
	return rules
}

// ParseZoneHeader splits a zone header into its name and the markers
// firewall-cmd appends in parentheses.
func ParseZoneHeader(header string) (name string, active, isDefault bool) {
	header = strings.TrimSpace(header)
	name, rest, ok := strings.Cut(header, " (")
	if !ok {
		return header, false, false
	}
	rest = strings.TrimSuffix(rest, ")")
	for _, marker := range strings.Split(rest, ",") {
		switch strings.TrimSpace(marker) {
		case "active":
			active = true
		case "default":
			isDefault = true
		}
	}
	return name, active, isDefault
}

// ParsePortDescriptor splits a "port/protocol" descriptor such as "22/tcp"
// or "60000-61000/udp".
func ParsePortDescriptor(descriptor string) (Port, error) {
	port, protocol, ok := strings.Cut(descriptor, "/")
	if !ok || port == "" || protocol == "" || strings.Contains(protocol, "/") {
		return Port{}, fmt.Errorf("%w: %q", ErrInvalidPort, descriptor)
	}
	return Port{Port: port, Protocol: protocol}, nil
}

// ParsePortDescriptors parses every descriptor, stopping at the first
// invalid one.
func ParsePortDescriptors(descriptors []string) ([]Port, error) {
	ports := make([]Port, 0, len(descriptors))
	for _, d := range descriptors {
		p, err := ParsePortDescriptor(d)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, nil
}
