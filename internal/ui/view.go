package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 24

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("250")).Padding(0, 1)
	sidebarStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	mainStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

// mainSize returns the viewport size left next to the sidebar, after
// borders, padding, header and status line.
func mainSize(width, height int) (int, int) {
	w := width - sidebarWidth - 8
	if w < 40 {
		w = 40
	}
	h := height - 6
	if h < 5 {
		h = 5
	}
	return w, h
}

func (m Model) View() string {
	sidebar := renderSidebar(m)
	main := renderMain(m)
	content := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left, content, renderStatus(m))
}

func renderSidebar(m Model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Zones"))
	b.WriteString("\n")

	if len(m.zones) == 0 {
		b.WriteString(dimStyle.Render("No zones"))
		return sidebarStyle.Width(sidebarWidth).Render(b.String())
	}

	for i, zone := range m.zones {
		prefix := "  "
		line := zone
		if zone == m.defaultZone {
			line += dimStyle.Render(" *")
		}
		if i == m.selected {
			prefix = "› "
			line = selectedStyle.Render(zone)
			if zone == m.defaultZone {
				line += dimStyle.Render(" *")
			}
		}
		b.WriteString(prefix + line + "\n")
	}

	return sidebarStyle.Width(sidebarWidth).Render(b.String())
}

func renderMain(m Model) string {
	var b strings.Builder

	zoneName := m.currentZone()
	if zoneName == "" {
		zoneName = "None"
	}
	mode := "Runtime"
	if m.permanent {
		mode = "Permanent"
	}

	header := fmt.Sprintf("%s (%s)", zoneName, mode)
	if m.loading {
		header = fmt.Sprintf("%s %s Loading...", header, m.spinner.View())
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		return mainStyle.Render(b.String())
	}

	b.WriteString(m.viewport.View())
	return mainStyle.Render(b.String())
}

// renderZoneInfo lays out the loaded zone settings, summary first, then the
// raw keys as firewall-cmd printed them.
func renderZoneInfo(m Model) string {
	if m.info == nil {
		return dimStyle.Render("No data loaded")
	}

	var b strings.Builder
	if z := m.currentZoneData(); z != nil {
		flags := []string{}
		if z.Default {
			flags = append(flags, "default")
		}
		if z.Active {
			flags = append(flags, "active")
		}
		if len(flags) > 0 {
			b.WriteString(dimStyle.Render(strings.Join(flags, ", ")))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %d   %s %d   %s %s\n\n",
			keyStyle.Render("services"), len(z.Services),
			keyStyle.Render("ports"), len(z.Ports),
			keyStyle.Render("target"), z.Target)
	}

	for _, header := range m.info.Names() {
		settings := m.info[header]
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			value := settings[k]
			if value == "" {
				value = dimStyle.Render("-")
			}
			b.WriteString(keyStyle.Render(k+":") + " " + value + "\n")
		}
	}
	return b.String()
}

func renderStatus(m Model) string {
	help := "j/k: zones  P: runtime/permanent  r: refresh  pgup/pgdn: scroll  q: quit"
	return statusStyle.Render(help)
}
