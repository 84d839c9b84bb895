//go:build linux
// +build linux

package firewalld

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
)

// GetZoneSettings reads the settings of zone from the runtime or permanent
// configuration.
func (c *Client) GetZoneSettings(zone string, permanent bool) (*Zone, error) {
	if c.apiVersion != APIv2 {
		return nil, ErrUnsupportedAPI
	}

	if permanent {
		return c.getZoneSettingsPermanent(zone)
	}

	return c.getZoneSettingsRuntime(zone)
}

func (c *Client) getZoneSettingsRuntime(zone string) (*Zone, error) {
	slog.Debug("fetching runtime zone settings", "zone", zone)

	var settings map[string]dbus.Variant
	method := dbusInterface + ".zone.getZoneSettings2"
	if err := c.call(method, &settings, zone); err != nil {
		return nil, mapError(err)
	}

	return parseZoneSettings(zone, settings), nil
}

func (c *Client) getZoneSettingsPermanent(zone string) (*Zone, error) {
	slog.Debug("fetching permanent zone settings", "zone", zone)

	obj, err := c.getConfigZoneObject(zone)
	if err != nil {
		return nil, mapError(err)
	}

	var settings map[string]dbus.Variant
	method := dbusInterface + ".config.zone.getSettings2"
	if err := c.callObject(obj, method, &settings); err != nil {
		return nil, mapError(err)
	}

	return parseZoneSettings(zone, settings), nil
}

func (c *Client) getConfigZoneObject(zone string) (dbus.BusObject, error) {
	var path dbus.ObjectPath
	method := dbusInterface + ".config.getZoneByName"
	if err := c.callObject(c.configObject(), method, &path, zone); err != nil {
		return nil, err
	}

	return c.conn.Object(dbusInterface, path), nil
}

// parseZoneSettings reads the getSettings2 dictionary. Keys firewalld
// does not send keep their zero value, values of an unexpected type are
// logged and skipped.
func parseZoneSettings(zone string, settings map[string]dbus.Variant) *Zone {
	z := &Zone{Name: zone}

	lists := map[string]*[]string{
		"services":    &z.Services,
		"protocols":   &z.Protocols,
		"rules_str":   &z.RichRules,
		"interfaces":  &z.Interfaces,
		"sources":     &z.Sources,
		"icmp_blocks": &z.IcmpBlocks,
	}
	for key, dst := range lists {
		if v, ok := settings[key]; ok {
			*dst = variantToStringSlice(v)
		}
	}

	flags := map[string]*bool{
		"masquerade":           &z.Masquerade,
		"icmp_block_inversion": &z.IcmpInvert,
	}
	for key, dst := range flags {
		if v, ok := settings[key]; ok {
			if val, ok := v.Value().(bool); ok {
				*dst = val
			} else {
				slog.Warn("unexpected zone setting type", "zone", zone, "key", key, "type", fmt.Sprintf("%T", v.Value()))
			}
		}
	}

	texts := map[string]*string{
		"target":      &z.Target,
		"short":       &z.Short,
		"description": &z.Description,
	}
	for key, dst := range texts {
		if v, ok := settings[key]; ok {
			if val, ok := v.Value().(string); ok {
				*dst = val
			} else {
				slog.Warn("unexpected zone setting type", "zone", zone, "key", key, "type", fmt.Sprintf("%T", v.Value()))
			}
		}
	}

	if v, ok := settings["ports"]; ok {
		ports, err := variantToPorts(v)
		if err != nil {
			slog.Warn("failed to parse ports", "zone", zone, "error", err)
		} else {
			z.Ports = ports
		}
	}

	slog.Debug("zone parsed", "zone", zone, "services", len(z.Services), "ports", len(z.Ports))
	return z
}

// zoneSettingsInfo renders z with the keys and value formats of
// firewall-cmd --info-zone.
func zoneSettingsInfo(z *Zone) map[string]string {
	ports := make([]string, 0, len(z.Ports))
	for _, p := range z.Ports {
		ports = append(ports, p.String())
	}
	target := z.Target
	if target == "" {
		target = "default"
	}
	return map[string]string{
		"target":               target,
		"icmp-block-inversion": yesNo(z.IcmpInvert),
		"interfaces":           strings.Join(z.Interfaces, " "),
		"sources":              strings.Join(z.Sources, " "),
		"services":             strings.Join(z.Services, " "),
		"ports":                strings.Join(ports, " "),
		"protocols":            strings.Join(z.Protocols, " "),
		"masquerade":           yesNo(z.Masquerade),
		"icmp-blocks":          strings.Join(z.IcmpBlocks, " "),
		"rich rules":           strings.Join(z.RichRules, "\n\t"),
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func variantToStringSlice(v dbus.Variant) []string {
	switch val := v.Value().(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	slog.Warn("unexpected variant type for string list", "type", fmt.Sprintf("%T", v.Value()))
	return nil
}

// variantToPorts accepts the a(ss) tuples firewalld sends as well as
// "port/proto" strings, in any of the shapes godbus decodes them to.
func variantToPorts(v dbus.Variant) ([]Port, error) {
	var items []any
	switch val := v.Value().(type) {
	case [][]string:
		for _, item := range val {
			items = append(items, item)
		}
	case [][]interface{}:
		for _, item := range val {
			items = append(items, item)
		}
	case []string:
		for _, item := range val {
			items = append(items, item)
		}
	case []interface{}:
		items = val
	default:
		return nil, fmt.Errorf("unexpected port format: %T", val)
	}

	ports := make([]Port, 0, len(items))
	for _, item := range items {
		p, err := portFrom(item)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func portFrom(item any) (Port, error) {
	switch val := item.(type) {
	case string:
		return ParsePortDescriptor(val)
	case []string:
		if len(val) == 2 {
			return Port{Port: val[0], Protocol: val[1]}, nil
		}
	case []interface{}:
		if len(val) == 2 {
			port, ok1 := val[0].(string)
			proto, ok2 := val[1].(string)
			if ok1 && ok2 {
				return Port{Port: port, Protocol: proto}, nil
			}
		}
	}
	return Port{}, fmt.Errorf("%w: %v", ErrInvalidPort, item)
}
