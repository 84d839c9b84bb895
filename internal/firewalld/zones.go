//go:build linux
// +build linux

package firewalld

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Zones returns the zone names of the runtime or permanent configuration.
func (c *Client) Zones(permanent bool) ([]string, error) {
	if permanent {
		return c.listZonesPermanent()
	}
	return c.listZonesRuntime()
}

func (c *Client) listZonesRuntime() ([]string, error) {
	var zones []string

	method := dbusInterface + ".zone.getZones"
	if c.apiVersion == APIv1 {
		method = dbusInterface + ".getZones"
	}

	if err := c.call(method, &zones); err != nil {
		return nil, mapError(err)
	}

	slog.Debug("zones listed (runtime)", "count", len(zones), "zones", zones)
	return zones, nil
}

func (c *Client) listZonesPermanent() ([]string, error) {
	if c.apiVersion != APIv2 {
		return nil, ErrUnsupportedAPI
	}

	var zones []string
	method := dbusInterface + ".config.getZoneNames"
	if err := c.callObject(c.configObject(), method, &zones); err != nil {
		return nil, mapError(err)
	}

	slog.Debug("zones listed (permanent)", "count", len(zones), "zones", zones)
	return zones, nil
}

// DefaultZone returns the default zone. firewalld keeps a single default
// zone for both configurations, so permanent only changes the API check.
func (c *Client) DefaultZone(permanent bool) (string, error) {
	if c.apiVersion != APIv2 {
		return "", ErrUnsupportedAPI
	}

	var zone string
	method := dbusInterface + ".getDefaultZone"
	if err := c.call(method, &zone); err != nil {
		return "", mapError(err)
	}
	slog.Debug("default zone", "zone", zone, "permanent", permanent)
	return zone, nil
}

func (c *Client) Services(permanent bool) ([]string, error) {
	var services []string
	if permanent {
		if c.apiVersion != APIv2 {
			return nil, ErrUnsupportedAPI
		}
		method := dbusInterface + ".config.getServiceNames"
		if err := c.callObject(c.configObject(), method, &services); err != nil {
			return nil, mapError(err)
		}
		return services, nil
	}

	method := dbusInterface + ".listServices"
	if err := c.call(method, &services); err != nil {
		return nil, mapError(err)
	}
	return services, nil
}

func (c *Client) Ports(zone string, permanent bool) ([]string, error) {
	if zone == "" {
		def, err := c.DefaultZone(permanent)
		if err != nil {
			return nil, err
		}
		zone = def
	}
	z, err := c.GetZoneSettings(zone, permanent)
	if err != nil {
		return nil, err
	}
	ports := make([]string, 0, len(z.Ports))
	for _, p := range z.Ports {
		ports = append(ports, p.String())
	}
	return ports, nil
}

// InfoZone returns the settings of zone keyed the way firewall-cmd
// --info-zone prints them. Runtime headers carry the default and active
// markers.
func (c *Client) InfoZone(zone string, permanent bool) (ZoneInfo, error) {
	if zone == "" {
		zone = DefaultZoneName
	}
	z, err := c.GetZoneSettings(zone, permanent)
	if err != nil {
		return nil, err
	}

	if !permanent {
		if def, err := c.DefaultZone(false); err == nil {
			z.Default = def == zone
		} else {
			slog.Warn("default zone lookup failed", "error", err)
		}
		if active, err := c.GetActiveZones(); err == nil {
			_, z.Active = active[zone]
		} else {
			slog.Warn("active zones lookup failed", "error", err)
		}
	}

	return ZoneInfo{zoneHeader(z): zoneSettingsInfo(z)}, nil
}

// GetActiveZones maps each active zone to its interfaces and sources.
func (c *Client) GetActiveZones() (map[string][]string, error) {
	if c.apiVersion != APIv2 {
		return nil, ErrUnsupportedAPI
	}

	method := dbusInterface + ".zone.getActiveZones"
	ctx, cancel := c.callContext()
	defer cancel()
	call := c.obj.CallWithContext(ctx, method, 0)
	if call.Err != nil {
		return nil, mapError(fmt.Errorf("dbus %s: %w", method, call.Err))
	}
	if len(call.Body) == 0 {
		return map[string][]string{}, nil
	}
	zones, err := normalizeActiveZones(call.Body[0])
	if err != nil {
		return nil, err
	}
	slog.Debug("active zones listed", "count", len(zones))
	return zones, nil
}

func zoneHeader(z *Zone) string {
	var markers []string
	if z.Default {
		markers = append(markers, "default")
	}
	if z.Active {
		markers = append(markers, "active")
	}
	if len(markers) == 0 {
		return z.Name
	}
	return z.Name + " (" + strings.Join(markers, ", ") + ")"
}

// normalizeActiveZones accepts both the firewalld 0.x a{sas} and the 1.x
// a{sa{sas}} shapes of getActiveZones and flattens each zone to the
// interfaces and sources bound to it.
func normalizeActiveZones(v any) (map[string][]string, error) {
	if variant, ok := v.(dbus.Variant); ok {
		return normalizeActiveZones(variant.Value())
	}

	out := make(map[string][]string)
	switch val := v.(type) {
	case map[string][]string:
		for zone, refs := range val {
			out[zone] = dedupeStrings(refs)
		}
	case map[string]map[string][]string:
		for zone, groups := range val {
			out[zone] = dedupeStrings(toStringSlice(groups))
		}
	case map[string]dbus.Variant:
		for zone, inner := range val {
			out[zone] = dedupeStrings(toStringSlice(inner))
		}
	case map[string]interface{}:
		for zone, inner := range val {
			out[zone] = dedupeStrings(toStringSlice(inner))
		}
	default:
		return nil, fmt.Errorf("unexpected active zones type: %T", v)
	}
	return out, nil
}

// toStringSlice flattens v into strings. Maps are walked in key order so
// the result is stable.
func toStringSlice(v any) []string {
	switch val := v.(type) {
	case dbus.Variant:
		return toStringSlice(val.Value())
	case string:
		return []string{val}
	case []string:
		return val
	case []interface{}:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string][]string:
		var out []string
		for _, k := range sortedKeys(val) {
			out = append(out, val[k]...)
		}
		return out
	case map[string]interface{}:
		var out []string
		for _, k := range sortedKeys(val) {
			out = append(out, toStringSlice(val[k])...)
		}
		return out
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
