package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchZonesCmd(m.querier, m.permanent))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width, m.viewport.Height = mainSize(msg.Width, msg.Height)
		m.viewport.SetContent(renderZoneInfo(m))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case zonesMsg:
		return m.handleZones(msg)
	case zoneInfoMsg:
		return m.handleZoneInfo(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "P":
		m.permanent = !m.permanent
		m.loading = true
		m.err = nil
		return m, fetchZonesCmd(m.querier, m.permanent)
	case "r":
		m.loading = true
		m.err = nil
		return m, fetchZonesCmd(m.querier, m.permanent)
	case "j", "down":
		if m.selected < len(m.zones)-1 {
			m.selected++
			return m.loadSelected()
		}
		return m, nil
	case "k", "up":
		if m.selected > 0 {
			m.selected--
			return m.loadSelected()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) loadSelected() (tea.Model, tea.Cmd) {
	zone := m.currentZone()
	if zone == "" {
		return m, nil
	}
	m.loading = true
	m.err = nil
	m.pendingZone = zone
	return m, fetchZoneInfoCmd(m.querier, zone, m.permanent)
}

func (m Model) handleZones(msg zonesMsg) (tea.Model, tea.Cmd) {
	if msg.permanent != m.permanent {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	want := m.currentZone()
	m.zones = msg.zones
	m.defaultZone = msg.defaultZone
	if len(m.zones) == 0 {
		m.err = fmt.Errorf("no zones returned")
		return m, nil
	}

	if m.initialZone != "" {
		want = m.initialZone
		m.initialZone = ""
	} else if want == "" {
		want = m.defaultZone
	}
	m.selected = 0
	for i, zone := range m.zones {
		if zone == want {
			m.selected = i
			break
		}
	}
	return m.loadSelected()
}

func (m Model) handleZoneInfo(msg zoneInfoMsg) (tea.Model, tea.Cmd) {
	if msg.zone != m.pendingZone || msg.permanent != m.permanent {
		// a newer selection is in flight
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		m.info = nil
		m.infoZone = ""
	} else {
		m.err = nil
		m.info = msg.info
		m.infoZone = msg.zone
	}
	m.viewport.SetContent(renderZoneInfo(m))
	m.viewport.GotoTop()
	return m, nil
}
