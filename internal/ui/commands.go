package ui

import (
	"log/slog"

	"fwprobe/internal/firewalld"

	tea "github.com/charmbracelet/bubbletea"
)

type zonesMsg struct {
	zones       []string
	defaultZone string
	permanent   bool
	err         error
}

type zoneInfoMsg struct {
	zone      string
	permanent bool
	info      firewalld.ZoneInfo
	err       error
}

func fetchZonesCmd(q firewalld.Querier, permanent bool) tea.Cmd {
	return func() tea.Msg {
		zones, err := q.Zones(permanent)
		if err != nil {
			return zonesMsg{permanent: permanent, err: err}
		}
		def, err := q.DefaultZone(permanent)
		if err != nil {
			// the list is still usable without the marker
			slog.Warn("default zone lookup failed", "error", err)
		}
		return zonesMsg{zones: zones, defaultZone: def, permanent: permanent}
	}
}

func fetchZoneInfoCmd(q firewalld.Querier, zone string, permanent bool) tea.Cmd {
	return func() tea.Msg {
		info, err := q.InfoZone(zone, permanent)
		return zoneInfoMsg{zone: zone, permanent: permanent, info: info, err: err}
	}
}
