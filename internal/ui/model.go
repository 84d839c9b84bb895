package ui

import (
	"fwprobe/internal/firewalld"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
)

type Options struct {
	Permanent bool
	Zone      string
	NoColor   bool
}

type Model struct {
	querier   firewalld.Querier
	zones     []string
	selected  int
	permanent bool

	defaultZone string
	info        firewalld.ZoneInfo
	infoZone    string
	pendingZone string
	initialZone string
	loading     bool
	err         error

	width    int
	height   int
	spinner  spinner.Model
	viewport viewport.Model
}

func NewModel(querier firewalld.Querier, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line

	return Model{
		querier:     querier,
		permanent:   opts.Permanent,
		initialZone: opts.Zone,
		loading:     true,
		spinner:     sp,
		viewport:    viewport.New(80, 20),
	}
}

func (m Model) currentZone() string {
	if m.selected < 0 || m.selected >= len(m.zones) {
		return ""
	}
	return m.zones[m.selected]
}

// currentZoneData returns the typed settings of the selected zone, if the
// loaded info belongs to it.
func (m Model) currentZoneData() *firewalld.Zone {
	if m.info == nil || m.infoZone != m.currentZone() {
		return nil
	}
	for _, header := range m.info.Names() {
		z, _ := m.info.Zone(header)
		if z != nil && z.Name == m.infoZone {
			return z
		}
	}
	return nil
}
